// Package units provides pure numeric unit conversions and wavelength
// helpers shared across the antenna packages.
package units

// SpeedOfLight is the speed of light in vacuum in meters per second.
const SpeedOfLight = 299792458.0

// MetersPerFoot is the exact international foot in meters.
const MetersPerFoot = 0.3048

// FeetToMeters converts a length in feet to meters.
func FeetToMeters(ft float64) float64 {
	return ft * MetersPerFoot
}

// MetersToFeet converts a length in meters to feet.
func MetersToFeet(m float64) float64 {
	return m / MetersPerFoot
}

// Wavelength returns the free-space wavelength in meters for a frequency
// in MHz.
func Wavelength(freqMHz float64) float64 {
	return SpeedOfLight / (freqMHz * 1e6)
}

// ResonantDipoleLength returns the approximate resonant half-wave dipole
// length in meters for a frequency in MHz.
func ResonantDipoleLength(freqMHz float64) float64 {
	return Wavelength(freqMHz) / 2.0
}

// KHzToMHz converts a frequency offset in kHz to MHz.
func KHzToMHz(khz float64) float64 {
	return khz / 1e3
}
