/*
go-linewatch tracks multiple moving subjects in a video stream, assigns
each a stable identity that survives detector flicker and ID switches,
and raises debounced boundary violation events when a subject's ground
contact point crosses a configured boundary line.

A Session owns everything for one stream: the identity table, the scaled
boundary polyline, the per-subject violation state machines and the
pre-roll frame ring.  Feed it one frame's detections at a time and read
violation counts per stable ID when done.

See the boundary, tracker, violation and evidence packages for the
individual components and cmd/linewatch for a replay CLI.
*/
package linewatch
