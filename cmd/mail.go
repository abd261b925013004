package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/hrm/internal/mail"
	"github.com/frahmantamala/hrm/pkg/logger"
	"github.com/spf13/cobra"
)

var mailTo string

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Mail delivery utilities",
}

var mailTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a sample verification email through the configured driver",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
		lg := logger.LoggerWrapper()

		renderer, err := mail.NewRenderer()
		if err != nil {
			return err
		}
		msg, err := renderer.Render(mail.TemplateVerificationCode, mailTo, map[string]string{
			"Code":      "ABC123",
			"ExpiresAt": time.Now().Add(cfg.Security.VerificationCodeTTL).UTC().Format(time.RFC1123),
		})
		if err != nil {
			return err
		}

		dispatcher := mail.NewDispatcher(newMailSender(cfg.Mail, lg), mail.DispatcherConfig{
			Workers:     1,
			SendTimeout: cfg.Mail.Timeout,
		}, lg)
		defer dispatcher.Shutdown()

		if err := dispatcher.Send(context.Background(), msg); err != nil {
			return fmt.Errorf("send test mail: %w", err)
		}
		lg.Info("test mail sent", "to", mailTo, "driver", cfg.Mail.Driver)
		return nil
	},
}

func init() {
	mailTestCmd.Flags().StringVar(&mailTo, "to", "", "recipient address")
	_ = mailTestCmd.MarkFlagRequired("to")
	mailCmd.AddCommand(mailTestCmd)
}
