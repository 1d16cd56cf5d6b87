// Package monotonic provides an offset-adjusted clock whose readings keep
// Go's monotonic component, so durations measured with it are immune to wall
// clock jumps while the wall reading can be corrected from NTP.
package monotonic
