// Package static provides the embedded web assets of the DroneVision landing
// page: the page template, its stylesheet and the scripts that drive the
// live mission control dashboard.
package static
