// Package analysis looks for periodic structure in run diagnostics.
//
// A crawling worm shows up as a peak in the spectrum of its centroid
// speed or of its grounded point count:
//
//	s := analysis.PowerSpectrum(series, 1/dt, true)
//	f, _ := s.Dominant()
package analysis
