// Package render exports layout snapshots as images and diagrams.
//
// [PNG] rasterizes the rooms, and optionally the connectivity triangulation
// with its circumcircles, using the gg software renderer. [ToDOT] describes
// the room connectivity graph in Graphviz DOT and [RenderSVG] lays it out
// with Graphviz. [ASCII] draws the rooms as a character tile map.
package render
