// Package netdef compiles declarative network definitions from CUE: seed
// molecules, the helper set, rewrite operators and strategy limits. A
// compiled Definition seeds a network and configures an expansion, which
// keeps scenario files and tests free of construction boilerplate.
package netdef
