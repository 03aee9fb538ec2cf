// Package points loads the YAML points file that describes one device
// endpoint, its tracked objects and the engine tuning for a session.
//
// The file is the unit installers maintain: a device block, an
// optional engine block and the list of objects to track. Load
// validates the whole file up front and reports errors with the line
// number of the offending entry, so a typo in a 300-point list is
// findable.
package points
