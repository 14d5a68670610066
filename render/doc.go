// Package render draws a Game of Life board as instanced quads. A single
// unit quad is drawn once per cell; each instance carries a translate and a
// colour, and the vertex stage scales the quad by a uniform 2x2 matrix before
// translating it. The same transform is implemented on the CPU for testing
// and for mapping mouse clicks back to cells.
package render
