// Package shared holds cross-cutting helpers that belong to no single
// pipeline layer. Its testutil subpackage provides the workbook fixture
// builder and the log-capturing slog handler the package tests lean on.
package shared
