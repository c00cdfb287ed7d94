// Package migrate assembles the run command that executes a configured
// repository migration end to end.
package migrate
