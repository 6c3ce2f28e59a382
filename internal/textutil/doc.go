// Package textutil provides small text helpers shared by the document scanner
// and the CLI.
package textutil
