package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joestump/portfolio/internal/auth"
	"github.com/joestump/portfolio/internal/config"
	"github.com/joestump/portfolio/internal/contact"
	"github.com/joestump/portfolio/internal/content"
	"github.com/joestump/portfolio/internal/db"
	"github.com/joestump/portfolio/internal/handler"
	"github.com/joestump/portfolio/internal/mail"
	"github.com/joestump/portfolio/internal/metrics"
	"github.com/joestump/portfolio/internal/store"
	"github.com/spf13/cobra"
)

const simulatedSendDelay = 2 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			site, err := content.LoadFile(cfg.ContentPath)
			if err != nil {
				return err
			}

			database, err := db.New(cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)
			authMiddleware := auth.NewMiddleware(sessionManager, cfg.AdminEmail)

			var authHandlers *auth.Handlers
			if cfg.AdminEnabled() {
				oidcProvider, err := auth.NewProvider(ctx, cfg)
				if err != nil {
					return err
				}
				authHandlers = auth.NewHandlers(oidcProvider, sessionManager, cfg.AdminEmail, !cfg.InsecureCookies)
			}

			messageStore := store.NewMessageStore(database)
			visitStore := store.NewVisitStore(database)

			sender := metrics.InstrumentSender(newSender(cfg, messageStore))
			forms := contact.NewRegistry(func() *contact.Controller {
				return contact.NewController(sender, contact.WithResetDelay(cfg.Contact.ResetDelay))
			})
			metrics.TrackContactForms(forms.Len)
			go forms.Run(ctx, sweepInterval(cfg.Contact.IdleTTL), cfg.Contact.IdleTTL)

			visitCh := make(chan store.PageView, 256)
			writerDone := make(chan struct{})
			go func() {
				runVisitWriter(ctx, visitCh, visitStore)
				close(writerDone)
			}()

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				AuthMiddleware: authMiddleware,
				AuthHandlers:   authHandlers,
				Content:        site,
				ContactForms:   forms,
				ContactSender:  sender,
				SendTimeout:    cfg.Contact.SendTimeout,
				MessageStore:   messageStore,
				VisitStore:     visitStore,
				VisitCh:        visitCh,
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				log.Printf("listening on %s", cfg.HTTP.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				log.Println("shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Contact.SendTimeout+5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("shutdown: %v", err)
			}
			stop()
			<-writerDone
			return nil
		},
	}
}

// newSender picks the contact delivery backend. Messages are always kept
// in the inbox; smtp additionally emails them.
func newSender(cfg *config.Config, messages *store.MessageStore) contact.Sender {
	switch cfg.Contact.Sender {
	case config.SenderSMTP:
		return contact.MultiSender{
			messages,
			mail.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.To),
		}
	case config.SenderSimulate:
		return contact.SimulatedSender{Delay: simulatedSendDelay}
	default:
		return messages
	}
}

func sweepInterval(idleTTL time.Duration) time.Duration {
	if d := idleTTL / 4; d > time.Second {
		return d
	}
	return time.Second
}

// runVisitWriter reads page views from the channel and persists them.
// On context cancellation it drains remaining events before returning.
// Writes are not tied to ctx so a queued view survives shutdown.
func runVisitWriter(ctx context.Context, ch <-chan store.PageView, vs *store.VisitStore) {
	writeCtx := context.WithoutCancel(ctx)
	record := func(v store.PageView) {
		if err := vs.RecordView(writeCtx, v); err != nil {
			metrics.PageViewsRecordErrorsTotal.Inc()
			log.Printf("page view write error: %v", err)
			return
		}
		metrics.PageViewsRecordedTotal.Inc()
	}
	for {
		select {
		case v, ok := <-ch:
			if !ok {
				return
			}
			record(v)
		case <-ctx.Done():
			for {
				select {
				case v, ok := <-ch:
					if !ok {
						return
					}
					record(v)
				default:
					return
				}
			}
		}
	}
}
