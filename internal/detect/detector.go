package detect

import (
	"fmt"
	"image"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// EnvSharedLibrary overrides the onnxruntime shared library location.
const EnvSharedLibrary = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// inputSize is the YOLO network input resolution (square).
const inputSize = 640

// iouThreshold is the NMS overlap cutoff.
const iouThreshold = 0.45

var (
	ortOnce sync.Once
	ortErr  error
)

func initRuntime() error {
	ortOnce.Do(func() {
		if path := os.Getenv(EnvSharedLibrary); path != "" {
			ort.SetSharedLibraryPath(path)
		}
		ortErr = ort.InitializeEnvironment()
	})
	if ortErr != nil {
		return fmt.Errorf("failed to initialize onnxruntime: %w", ortErr)
	}
	return nil
}

// Detection is one detected object in original-image pixel coordinates.
type Detection struct {
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"` // [x1, y1, x2, y2]
}

// Detector wraps a loaded ONNX detection model. It is safe for concurrent
// use; inference runs are serialized because the session reuses its
// input/output tensors.
type Detector struct {
	mu         sync.Mutex
	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	output     *ort.Tensor[float32]
	numClasses int
	numAnchors int
	classes    []string
}

// New loads a detection model from an ONNX file.
func New(modelPath string) (*Detector, error) {
	if err := initRuntime(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect model %s: %w", modelPath, err)
	}
	if len(inputs) != 1 || len(outputs) != 1 {
		return nil, fmt.Errorf("unsupported model %s: expected 1 input and 1 output, got %d/%d",
			modelPath, len(inputs), len(outputs))
	}
	outDims := outputs[0].Dimensions
	if len(outDims) != 3 || outDims[1] < 5 {
		return nil, fmt.Errorf("unsupported model %s: output shape %v is not a YOLO detection head", modelPath, outDims)
	}
	numClasses := int(outDims[1]) - 4
	numAnchors := int(outDims[2])

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, inputSize, inputSize))
	if err != nil {
		return nil, fmt.Errorf("failed to allocate input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(numClasses+4), int64(numAnchors)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to load model %s: %w", modelPath, err)
	}

	return &Detector{
		session:    session,
		input:      inputTensor,
		output:     outputTensor,
		numClasses: numClasses,
		numAnchors: numAnchors,
		classes:    classNames(numClasses),
	}, nil
}

// Close releases the session and its tensors.
func (d *Detector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session != nil {
		d.session.Destroy()
		d.input.Destroy()
		d.output.Destroy()
		d.session = nil
	}
}

// Detect runs the model on an image and returns detections with confidence
// of at least threshold, sorted by descending confidence.
func (d *Detector) Detect(img image.Image, threshold float64) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session == nil {
		return nil, fmt.Errorf("detector is closed")
	}

	lb := letterbox(img)
	copy(d.input.GetData(), lb.pixels)

	if err := d.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	return d.decode(d.output.GetData(), lb, threshold), nil
}

// Classes returns the model's class labels.
func (d *Detector) Classes() []string {
	return d.classes
}
