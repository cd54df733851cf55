// Package reports holds the aggregate reporting model (stats, trend, traffic
// sources) and the controller that loads its panels independently and
// exports the CSV report.
package reports
