// Package main hosts the soundstage CLI.
//
// Commands open a widget backend (the simulator or a browser-hosted embed),
// wrap it in a player, and either print what the widget reports or drive
// it: typed polls, status snapshots, fuzzy track selection, loading a new
// track and the terminal level meter. Offline helpers cover config
// scaffolding, smoother tuning traces, env-file templating of built assets
// and reading the log file.
package main
