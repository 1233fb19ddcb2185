/*
Package cli provides command-line helpers for the gradpath command.

Output Formatting:

Commands accept a --format flag. ParseFormat checks the value and
NewFormatter returns the matching writer:

	format, err := cli.ParseFormat(flags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(w, result); err != nil {
		return err
	}

CSV output needs a result implementing Tabular.

Errors:

ConfigError reports a bad flag or config value; CommandError wraps the
failure of a command that ran.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
