package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/initializ/skyci/ci"
	"github.com/initializ/skyci/validate"
)

var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the .skyci.yaml project file",
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	// Same resolution as run: workspace joined with the working-directory input.
	env, err := ci.FromEnv()
	if err != nil {
		return err
	}
	cfgPath := resolvePath(cfgFile, env.WorkDir)

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		fmt.Printf("No config file at %s; defaults apply.\n", cfgPath)
		return nil
	}

	_, result, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	printResult(os.Stderr, result)

	if strict && len(result.Warnings) > 0 {
		return fmt.Errorf("validation failed: %d warning(s) treated as errors in strict mode", len(result.Warnings))
	}

	if !result.IsValid() {
		return fmt.Errorf("validation failed: %d error(s)", len(result.Errors))
	}

	fmt.Println("Validation passed.")
	return nil
}

func printResult(w io.Writer, result *validate.ValidationResult) {
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "WARNING: %s\n", warning)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "ERROR: %s\n", e)
	}
}
