package models

// builtinDescriptions seed the manifest for the model names the download
// command knows about.
var builtinDescriptions = map[string]string{
	"yolov8n.onnx":  "YOLOv8 nano detection model (ONNX export, COCO classes). Fastest, least accurate.",
	"yolov8s.onnx":  "YOLOv8 small detection model (ONNX export, COCO classes).",
	"yolov8m.onnx":  "YOLOv8 medium detection model (ONNX export, COCO classes). Good speed/accuracy balance.",
	"yolov8l.onnx":  "YOLOv8 large detection model (ONNX export, COCO classes).",
	"yolov8x.onnx":  "YOLOv8 extra-large detection model (ONNX export, COCO classes). Most accurate, slowest.",
	"yolov8n.pt":    "YOLOv8 nano PyTorch weights. Export to ONNX before use with this server.",
	"yolov8s.pt":    "YOLOv8 small PyTorch weights. Export to ONNX before use with this server.",
	"yolov8m.pt":    "YOLOv8 medium PyTorch weights. Export to ONNX before use with this server.",
	"yolov8l.pt":    "YOLOv8 large PyTorch weights. Export to ONNX before use with this server.",
	"yolov8x.pt":    "YOLOv8 extra-large PyTorch weights. Export to ONNX before use with this server.",
	"yolo11n.pt":    "YOLO11 nano PyTorch weights. Export to ONNX before use with this server.",
	"yolo11s.pt":    "YOLO11 small PyTorch weights. Export to ONNX before use with this server.",
	"yolo11m.pt":    "YOLO11 medium PyTorch weights. Export to ONNX before use with this server.",
	"yolo11l.pt":    "YOLO11 large PyTorch weights. Export to ONNX before use with this server.",
	"yolo11x.pt":    "YOLO11 extra-large PyTorch weights. Export to ONNX before use with this server.",
}

// WriteDescriptions (re)creates the manifest with the built-in
// descriptions, preserving any entries added for downloaded models.
func WriteDescriptions() (string, error) {
	manifest, err := readManifest()
	if err != nil {
		return "", err
	}
	for name, desc := range builtinDescriptions {
		if _, ok := manifest[name]; !ok {
			manifest[name] = desc
		}
	}
	if err := writeManifest(manifest); err != nil {
		return "", err
	}
	return manifestPath(), nil
}
