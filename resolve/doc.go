// Package resolve turns WIT interface documents into one resolved package
// graph and selects the world a component targets.
//
// Sources may be directories, single .wit documents, or binary-encoded
// packages. They are staged as dependencies of a synthetic workspace package
// and resolved by a single `wasm-tools component wit --json` run into one
// *wit.Resolve, so every package, interface and world shares that graph. The
// package declared by each source becomes a main package; world selection
// searches main packages in the order the sources were given.
package resolve
