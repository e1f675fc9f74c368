// Package toolchain runs the external programs componentize-go depends on.
//
// Every invocation goes through the Runner interface: one synchronous run
// that captures the exit status, stdout and stderr. ExecRunner starts host
// processes; WazeroRunner executes a wasip1 command module in-process, which
// lets a wasm build of wasm-tools stand in for a native installation.
package toolchain
