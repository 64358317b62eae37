package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TWRT/law-office/internal/api"
	"github.com/TWRT/law-office/internal/auth"
	"github.com/TWRT/law-office/internal/client"
	"github.com/TWRT/law-office/internal/client/gcal"
	"github.com/TWRT/law-office/internal/client/sendinvite"
	"github.com/TWRT/law-office/internal/config"
	"github.com/TWRT/law-office/internal/deadline"
	"github.com/TWRT/law-office/internal/logging"
	"github.com/TWRT/law-office/internal/mail"
	"github.com/TWRT/law-office/internal/models"
	"github.com/TWRT/law-office/internal/render"
	"github.com/TWRT/law-office/internal/repository"
	"github.com/TWRT/law-office/internal/seed"
	"github.com/TWRT/law-office/internal/service"
	"github.com/TWRT/law-office/internal/telemetry"
	"github.com/sirupsen/logrus"
)

func main() {
	seedAdmins := flag.String("seed-admins", "", "Invite the administrators listed in a YAML file and exit")
	agendaMonth := flag.String("agenda", "", "Print the agenda for a month (YYYY-MM) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.Setup(cfg.Env, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint)
	if err != nil {
		log.WithError(err).Fatal("telemetry setup")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.WithError(err).Warn("telemetry shutdown")
		}
	}()

	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		log.WithError(err).Fatal("init database")
	}
	defer db.Close()
	log.WithField("path", cfg.DBPath).Info("database ready")

	mailer := mail.New(cfg.SMTP, log)
	provider := auth.NewProvider(db, mailer, auth.Config{
		Secret:      cfg.Secret(),
		SessionTTL:  cfg.SessionTTL,
		InviteTTL:   cfg.InviteTTL,
		RecoveryTTL: cfg.RecoveryTTL,
		AppBaseURL:  cfg.AppBaseURL,
	}, log)

	exporter := calendarExporter(ctx, cfg, repository.NewExportMappingRepository(db), log)

	switch {
	case *seedAdmins != "":
		if err := runSeed(ctx, *seedAdmins, provider, repository.NewEmployeeRepository(db), mailer, log); err != nil {
			log.WithError(err).Fatal("seed admins")
		}
		return
	case *agendaMonth != "":
		if err := printAgenda(ctx, *agendaMonth, service.NewCalendarService(db, exporter, log)); err != nil {
			log.WithError(err).Fatal("agenda")
		}
		return
	}

	var dispatcher client.InviteDispatcher
	if cfg.InviteMode == config.InviteModeHTTP {
		dispatcher = sendinvite.NewSendInviteClient(cfg.InviteURL, cfg.InviteToken, cfg.InviteTimeout)
	}

	router := api.SetupRouter(api.Deps{
		DB:          db,
		Auth:        provider,
		Mailer:      mailer,
		Dispatcher:  dispatcher,
		Exporter:    exporter,
		DayMode:     deadline.ParseDayMode(cfg.DeadlineDayMode),
		InviteToken: cfg.InviteToken,
		Log:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
}

// calendarExporter returns nil when no Google credentials are configured.
func calendarExporter(ctx context.Context, cfg config.Config, index gcal.EventIndex, log *logrus.Entry) client.CalendarExporter {
	if cfg.GoogleCredentialsFile == "" {
		return nil
	}
	c, err := gcal.NewGcalClient(ctx, cfg.GoogleCredentialsFile, cfg.GoogleCalendarID, cfg.GoogleTimeZone)
	if err != nil {
		log.WithError(err).Warn("google calendar export disabled")
		return nil
	}
	return c.WithIndex(index)
}

func runSeed(ctx context.Context, path string, inviter seed.Inviter, employees *repository.EmployeeRepository, mailer mail.Mailer, log *logrus.Entry) error {
	admins, err := seed.LoadAdmins(path)
	if err != nil {
		return err
	}
	results, err := seed.NewSeeder(inviter, employees, mailer, log).Run(ctx, admins)
	for _, r := range results {
		fmt.Printf("%-40s %-15s %s\n", r.Email, r.Status, r.Message)
	}
	return err
}

func printAgenda(ctx context.Context, month string, calendar *service.CalendarService) error {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	view, err := calendar.Month(ctx, t.Year(), t.Month())
	if err != nil {
		return err
	}
	fmt.Println(render.Agenda(view.Year, view.Month, view.Days, models.DateOf(time.Now())))
	return nil
}
