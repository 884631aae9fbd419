// Command intakeq-probe is an operator tool for poking at the IntakeQ account
// and mail setup the API server uses. It reads the same environment.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/healingsoulutions/intake-api/internal/config"
	"github.com/healingsoulutions/intake-api/internal/infra/integration/intakeq"
	"github.com/healingsoulutions/intake-api/internal/infra/mail"
)

func main() {
	if err := rootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "intakeq-probe",
		Short:         "Inspect IntakeQ records and test mail delivery",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)

	root.AddCommand(lookupCmd())
	root.AddCommand(sendFormCmd())
	root.AddCommand(intakeSummaryCmd())
	root.AddCommand(testEmailCmd())
	return root
}

func loadClient() (*config.Config, *intakeq.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.RecordsConfigured() {
		return nil, nil, fmt.Errorf("INTAKEQ_API_KEY is not set")
	}
	return cfg, intakeq.NewClient(cfg.IntakeQAPIKey, cfg.IntakeQBaseURL, cfg.HTTPTimeout(), nil), nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func lookupCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Show what IntakeQ stores for a client email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := loadClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			raw, err := client.SearchClientsRaw(ctx, email)
			if err != nil {
				return err
			}
			if len(raw) == 0 {
				return fmt.Errorf("no client found for %s", email)
			}

			first := raw[0]
			fields := make([]string, 0, len(first))
			for k := range first {
				fields = append(fields, k)
			}
			sort.Strings(fields)

			notes, _ := first["AdditionalInformation"].(string)
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"matches":               len(raw),
				"clientId":              first["ClientId"],
				"name":                  first["Name"],
				"email":                 first["Email"],
				"tags":                  first["Tags"],
				"additionalInformation": notes,
				"additionalInfoLength":  len(notes),
				"allFieldNames":         fields,
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "client email to search for")
	cmd.MarkFlagRequired("email")
	return cmd
}

func sendFormCmd() *cobra.Command {
	var questionnaire, clientID, name, email string
	cmd := &cobra.Command{
		Use:   "send-form",
		Short: "Send a questionnaire to an existing client",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, client, err := loadClient()
			if err != nil {
				return err
			}
			if questionnaire == "" {
				questionnaire = cfg.IntakeQQuestionnaireID
			}
			if questionnaire == "" {
				return fmt.Errorf("--questionnaire or INTAKEQ_QUESTIONNAIRE_ID is required")
			}

			err = client.SendQuestionnaire(cmd.Context(), intakeq.SendQuestionnaireInput{
				QuestionnaireID: questionnaire,
				ClientID:        clientID,
				ClientName:      name,
				ClientEmail:     email,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "questionnaire %s sent to client %s\n", questionnaire, clientID)
			return nil
		},
	}
	cmd.Flags().StringVar(&questionnaire, "questionnaire", "", "questionnaire id (defaults to INTAKEQ_QUESTIONNAIRE_ID)")
	cmd.Flags().StringVar(&clientID, "client", "", "IntakeQ client id")
	cmd.Flags().StringVar(&name, "name", "", "client name shown on the form")
	cmd.Flags().StringVar(&email, "email", "", "address the form is sent to")
	cmd.MarkFlagRequired("client")
	cmd.MarkFlagRequired("email")
	return cmd
}

func intakeSummaryCmd() *cobra.Command {
	var clientID string
	cmd := &cobra.Command{
		Use:   "intake-summary",
		Short: "List questionnaires sent to a client and their status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := loadClient()
			if err != nil {
				return err
			}
			summaries, err := client.ListIntakeSummaries(cmd.Context(), clientID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summaries)
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "IntakeQ client id")
	cmd.MarkFlagRequired("client")
	return cmd
}

func testEmailCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "test-email",
		Short: "Send a test message through the configured mail transport",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if to == "" {
				to = cfg.PracticeInbox
			}

			var transport mail.Transport
			switch {
			case cfg.ResendAPIKey != "":
				transport, err = mail.NewResendSender(cfg.ResendAPIKey, "", nil)
				if err != nil {
					return err
				}
			case cfg.MailHost != "":
				transport = mail.NewSMTPSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass)
			default:
				return fmt.Errorf("neither RESEND_API_KEY nor MAIL_HOST is set")
			}

			err = transport.Send(cmd.Context(), mail.Message{
				From:    cfg.MailFrom,
				To:      []string{to},
				Subject: "Test email - " + cfg.PracticeName,
				HTML:    "<p>Mail delivery from the intake API is working.</p>",
				ReplyTo: cfg.PracticeInbox,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "test email sent to %s\n", to)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient (defaults to PRACTICE_INBOX)")
	return cmd
}
