// Package canvas implements the interactive core of the inpainting canvas:
// the input controller that turns pointer events into strokes and view
// changes, the layered compositor, and asynchronous base image loading.
//
// Everything here runs on one event loop. The host surface (see Surface)
// delivers events in arrival order, and the loader posts its results back
// through a Dispatcher, so no locking is needed around the session.
package canvas
