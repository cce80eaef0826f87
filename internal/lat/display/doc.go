// Package display renders filtered events for inspection: a PNG per view
// through gonum/plot and an interactive HTML page through go-echarts.
//
// Both place every cluster at its global strip position (tower offset plus
// strip) against the layer Z, so tracks crossing towers line up.
package display
