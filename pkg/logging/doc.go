// Package logging provides a structured logging system for toolbench with
// unified log handling and level filtering.
//
// The package wraps Go's standard slog package. Every log entry carries a
// subsystem identifier so output from the executor, generator, tool client,
// catalog and HTTP layers can be told apart in a single stream.
//
// # Usage
//
// Initialize once at startup:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
// Then log from any subsystem:
//
//	logging.Info("Executor", "Spawning %s interpreter", lang)
//	logging.Error("ToolClient", err, "Call to %s/%s failed", server, tool)
//
// Calls made before InitForCLI are dropped. The level passed to InitForCLI
// filters everything below it.
package logging
