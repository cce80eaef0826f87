// Package replay feeds recorded events through the filter on a pool of
// workers and hands the results, in event order, to the optional result
// store and event plotter.
package replay
