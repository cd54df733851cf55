package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jobdesk/internal/backend"
	"jobdesk/internal/jobs"
	"jobdesk/internal/session"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var token string
	var verify bool

	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Store the admin bearer token",
		Long:        "Store the admin bearer token. The token is read from --token, from piped stdin, or from a hidden prompt.",
		Args:        cobra.NoArgs,
		Annotations: publicAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			guard, store, err := ctx.sessionGuard()
			if err != nil {
				return err
			}
			value := strings.TrimSpace(token)
			if value == "" {
				value, err = readToken(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}
			if err := guard.Login(value); err != nil {
				return fmt.Errorf("store token: %w", err)
			}

			out := cmd.OutOrStdout()
			if verify {
				client, err := ctx.backendClient()
				if err != nil {
					return err
				}
				if _, err := client.ListJobs(cmd.Context(), jobs.NewQuery(jobs.PageSizes[0])); err != nil {
					if backend.IsAuthFailure(err) {
						return errors.New("token rejected by backend; session not saved")
					}
					return fmt.Errorf("verify token: %w", err)
				}
				fmt.Fprintln(out, "Token verified against", client.BaseURL())
			}
			fmt.Fprintf(out, "Admin session saved to %s\n", store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Admin bearer token")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the token with a listing request before finishing")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Discard the stored admin token",
		Args:        cobra.NoArgs,
		Annotations: publicAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			guard, _, err := ctx.sessionGuard()
			if err != nil {
				return err
			}
			if err := guard.Logout(); err != nil {
				return fmt.Errorf("discard token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:         "session",
		Short:       "Inspect the admin session",
		Annotations: publicAnnotations(),
	}
	sessionCmd.AddCommand(newSessionStatusCommand(ctx))
	return sessionCmd
}

type sessionStatusJSON struct {
	Active    bool       `json:"active"`
	TokenPath string     `json:"token_path"`
	BaseURL   string     `json:"base_url"`
	Subject   string     `json:"subject,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func newSessionStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether an admin token is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			guard, store, err := ctx.sessionGuard()
			if err != nil {
				return err
			}
			cfg := ctx.configValue()

			status := sessionStatusJSON{TokenPath: store.Path(), BaseURL: cfg.API.BaseURL}
			token, err := guard.Token()
			switch {
			case errors.Is(err, session.ErrNoSession):
			case err != nil:
				return err
			default:
				status.Active = true
				if claims, ok := session.InspectToken(token); ok {
					status.Subject = claims.Subject
					status.IssuedAt = nonZeroTime(claims.IssuedAt)
					status.ExpiresAt = nonZeroTime(claims.ExpiresAt)
					status.Expired = claims.Expired(time.Now())
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, status)
			}
			printSessionStatus(cmd, status)
			return nil
		},
	}
}

func printSessionStatus(cmd *cobra.Command, status sessionStatusJSON) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	if !status.Active {
		fmt.Fprintln(out, renderStatusLine("Session", statusWarn, "Not logged in; run 'jobdesk login'", colorize))
	} else {
		fmt.Fprintln(out, renderStatusLine("Session", statusOK, "Token stored", colorize))
	}
	fmt.Fprintln(out, renderStatusLine("Token file", statusInfo, status.TokenPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Backend", statusInfo, status.BaseURL, colorize))
	if status.Subject != "" {
		fmt.Fprintln(out, renderStatusLine("Subject", statusInfo, status.Subject, colorize))
	}
	if status.IssuedAt != nil {
		fmt.Fprintln(out, renderStatusLine("Issued", statusInfo, formatAge(*status.IssuedAt), colorize))
	}
	if status.ExpiresAt != nil {
		kind, label := statusOK, "expires "+formatAge(*status.ExpiresAt)
		if status.Expired {
			kind, label = statusError, "expired "+formatAge(*status.ExpiresAt)
		}
		fmt.Fprintln(out, renderStatusLine("Expiry", kind, label, colorize))
	}
}

func nonZeroTime(ts time.Time) *time.Time {
	if ts.IsZero() {
		return nil
	}
	return &ts
}
