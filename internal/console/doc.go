// Package console implements the interactive REPL for a running toolbench
// server.
//
// The console talks to the REST surface for execution and catalog queries
// (run, search, info, tools, health) and holds its own upstream connections
// for direct tool invocation (call), which bypasses the server entirely.
// Code can be given inline after run or pasted as a multi-line block
// terminated by a bare "end" line.
//
// Line editing, persistent history and tab completion come from
// chzyer/readline; tables are rendered with go-pretty.
package console
