package cmd

// exitCodeFor maps a command error to the process exit code. Every
// subcommand except check-termination uses the conventional 0=success,
// 1=error; check-termination's own RunE never returns an error for a
// recommendation, only for a genuine execution fault, so this stays the
// uniform fallback for everything else.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
