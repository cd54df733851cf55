// Package logs reads jobdesk's own log file back for the `jobdesk logs`
// command.
//
// Console records span a header line plus indented field lines, while JSON
// records occupy a single line; Tail groups raw lines into Entry values so a
// record is never split when it is filtered or printed. Negative offsets mean
// "the last N entries", and follow mode polls for appended records until the
// caller's context ends.
package logs
