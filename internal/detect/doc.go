// Package detect runs object detection with YOLO-family models through
// ONNX Runtime.
//
// Model inference is delegated entirely to onnxruntime; this package owns
// the surrounding plumbing: letterbox preprocessing, output decoding,
// per-class non-maximum suppression and mapping boxes back into original
// image coordinates.
//
// Models are ONNX exports with the standard YOLOv8 detection output layout
// [1, 4+numClasses, numAnchors]. The 80 COCO class names are assumed for
// 80-class models; other class counts get generated class_<n> labels.
//
// The onnxruntime shared library must be available at runtime. Its location
// can be set with the ONNXRUNTIME_SHARED_LIBRARY_PATH environment variable
// when it is not on the default loader path.
package detect
