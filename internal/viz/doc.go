// Package viz renders finished runs for the terminal: asciigraph plots of
// the landscape and trajectory, lipgloss summary panels, and a Braille
// canvas for planar paths.
package viz
