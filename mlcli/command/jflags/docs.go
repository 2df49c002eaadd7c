package jflags

// jflags contain structs for flags of cobra commands
//
// package name: we use jflags for the package name so that variables can
// continue being named "flags" without having a conflict with the package name.
//
// Naming Convention:
//
// 1. Command Flag Structs
// They contain the full set of flags of a cobra-command.
//
// These are named as {name}Cmd. For example, ComputeCmd.
//
// 2. Embedded Flag Structs
// These structs are embedded inside the Command Flag Structs. They let us
// compose flags into multiple commands.
//
// For example, File is embedded into every command that reconciles a
// config file, and Wait into the commands that can block on Azure.
