// @title           Portfolio API
// @version         1.0
// @description     Read-only portfolio content, the visitor's theme and a stateless contact endpoint.
// @BasePath        /api/v1
package api
