/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: markers.go
Description: JPEG marker constants and human-readable marker names. Only marker
boundaries are ever interpreted; segment payloads and pixel data are not.
*/

package jpeg

import "fmt"

// Marker bytes. A marker is MarkerPrefix followed by a non-zero code byte.
const (
	MarkerPrefix byte = 0xFF
	StuffedByte  byte = 0x00

	MarkerSOI byte = 0xD8 // Start Of Image
	MarkerEOI byte = 0xD9 // End Of Image
	MarkerSOS byte = 0xDA // Start Of Scan
	MarkerDQT byte = 0xDB
	MarkerDHT byte = 0xC4
	MarkerDRI byte = 0xDD
	MarkerCOM byte = 0xFE
)

// MarkerName returns the short name of a marker code byte (SOS, RST3, APP0, ...).
func MarkerName(code byte) string {
	switch code {
	case MarkerSOI:
		return "SOI"
	case MarkerEOI:
		return "EOI"
	case MarkerSOS:
		return "SOS"
	case MarkerDQT:
		return "DQT"
	case MarkerDHT:
		return "DHT"
	case MarkerDRI:
		return "DRI"
	case MarkerCOM:
		return "COM"
	}
	switch {
	case code >= 0xC0 && code <= 0xCF:
		return fmt.Sprintf("SOF%d", code-0xC0)
	case code >= 0xD0 && code <= 0xD7:
		return fmt.Sprintf("RST%d", code-0xD0)
	case code >= 0xE0 && code <= 0xEF:
		return fmt.Sprintf("APP%d", code-0xE0)
	}
	return fmt.Sprintf("UNK%#02x", code)
}

// IsRestart reports whether code is one of the RST0-RST7 markers.
func IsRestart(code byte) bool {
	return code >= 0xD0 && code <= 0xD7
}
