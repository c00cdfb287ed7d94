// Package treediff computes byte-exact differences between sibling directory
// trees and replays them onto independently evolved targets.
//
// The heavy lifting is delegated to the external git binary (diff --no-index
// and apply) behind a narrow executor interface so orchestration logic stays
// testable without invoking any real tool.
package treediff
