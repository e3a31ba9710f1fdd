// Package printing contains the page layout value objects shared by the
// PDF rendering infrastructure: paper sizes, orientation, and margins.
package printing
