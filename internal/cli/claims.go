package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/driftscan/internal/model"
	"github.com/ppiankov/driftscan/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var claimsJSON bool

// claimsCmd represents the claims command
var claimsCmd = &cobra.Command{
	Use:   "claims [root]",
	Short: "List the feature claims extracted from documentation",
	Long: `Claims runs extraction only: it reads the documentation of a repository
and prints every accepted claim with its source location, category and
tokens. No snapshot is needed.

Example:
  driftscan claims
  driftscan claims ./myrepo --json > claims.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClaims,
}

func init() {
	rootCmd.AddCommand(claimsCmd)
	claimsCmd.Flags().BoolVar(&claimsJSON, "json", false, "print claims as JSON")
}

func runClaims(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	cfg.Output.Verbose = cfg.Output.Verbose || verbose

	logger := newLogger(os.Stderr, logFormat, cfg.Output.Verbose)
	p := pipeline.NewPipeline(cfg, logger, cmd.OutOrStdout())

	set, err := p.Claims(cmd.Context(), rootArg(args))
	if err != nil {
		return fmt.Errorf("extract claims: %w", err)
	}

	out := cmd.OutOrStdout()
	if claimsJSON {
		claims := set.Claims
		if claims == nil {
			claims = []model.FeatureClaim{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(claims)
	}

	for _, c := range set.Claims {
		fmt.Fprintf(out, "%s:%d\t[%s]\t%s\n", c.SourceFile, c.SourceLine, c.SourceCategory, c.RawText)
	}
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d claims from %d documents\n", len(set.Claims), set.Documents)
		if set.Truncated > 0 {
			fmt.Fprintf(os.Stderr, "  %d claims beyond max_features were dropped\n", set.Truncated)
		}
	}
	return nil
}
