// Package icons defines the icon identifiers used by page templates.
//
// The catalog maps stable icon identifiers to human-readable labels so that
// templates can communicate intent without dictating presentation. The
// Lucide sprite supplies the markup each identifier renders with.
package icons
