package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leapmap/internal/cli/output"
	"github.com/spf13/cobra"
)

// PingOutput is the JSON shape of the ping command.
type PingOutput struct {
	Driver    string `json:"driver"`
	Metadata  string `json:"metadata_uuid"`
	Session   string `json:"session_id"`
	FlushMode string `json:"flush_mode"`
	LatencyMS int64  `json:"latency_ms"`
}

// NewPingCommand creates the ping command.
func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Bind the mappings and open a session against the target database",
		Long: `Bind the mappings directory, build a session factory for the configured
target and open one session. Fails if the mappings do not bind, the driver is
unknown or the database cannot be reached.`,
		Example: `  leapmap ping
  leapmap ping --driver postgres --dsn postgres://localhost/shop`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			ctx := cmd.Context()

			res, err := cc.bindMappings(ctx)
			if err != nil {
				return err
			}

			start := time.Now()
			factory, err := cc.sessionFactory(ctx, res.Metadata)
			if err != nil {
				return err
			}
			defer func() { _ = factory.Close() }()

			s, err := factory.OpenSession(ctx)
			if err != nil {
				return fmt.Errorf("failed to open session: %w", err)
			}
			defer func() { _ = s.Close() }()

			out := &PingOutput{
				Driver:    factory.Options().Driver,
				Metadata:  factory.UUID().String(),
				Session:   s.ID().String(),
				FlushMode: string(s.FlushMode()),
				LatencyMS: time.Since(start).Milliseconds(),
			}
			return renderPing(cc.Renderer, out)
		},
	}
}

func renderPing(r *output.Renderer, out *PingOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}
	r.Header(1, "session factory")
	r.KeyValue("Driver", out.Driver)
	r.KeyValue("Metadata", out.Metadata)
	r.KeyValue("Session", out.Session)
	r.KeyValue("Flush Mode", out.FlushMode)
	r.KeyValue("Latency", fmt.Sprintf("%dms", out.LatencyMS))
	r.Println()
	r.Success("connected")
	return nil
}
