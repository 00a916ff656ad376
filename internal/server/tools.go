package server

// Schema construction helpers. Tool input schemas are plain maps so they
// can be served verbatim in tools/list; every schema closes over
// additionalProperties so the validation middleware can report unexpected
// parameters by name.

func schemaObject(props map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func prop(typ, desc string) map[string]any {
	return map[string]any{"type": typ, "description": desc}
}

func withDefault(p map[string]any, def any) map[string]any {
	p["default"] = def
	return p
}

func withEnum(p map[string]any, values ...any) map[string]any {
	p["enum"] = values
	return p
}

func withRange(p map[string]any, minimum, maximum float64) map[string]any {
	p["minimum"] = minimum
	p["maximum"] = maximum
	return p
}

func arrayOf(items map[string]any, desc string) map[string]any {
	return map[string]any{"type": "array", "description": desc, "items": items}
}

// colorProp describes a color argument: BGR array or hex string.
func colorProp(desc string) map[string]any {
	return map[string]any{
		"description": desc + " Either a [b, g, r] array (0-255, optionally [b, g, r, a]) or a hex string like \"#FF0000\".",
		"oneOf": []any{
			map[string]any{"type": "array", "items": map[string]any{"type": "integer"}, "minItems": 3, "maxItems": 4},
			map[string]any{"type": "string"},
		},
	}
}

func inputPathProp() map[string]any {
	return prop("string", "Full path to the input image (must be a full path)")
}

func outputPathProp(suffix string) map[string]any {
	return prop("string", "Full path to save the output image (must be a full path). "+
		"If not provided, will use the input filename with a '"+suffix+"' suffix.")
}

// toolCatalog builds every tool definition with its handler bound to the
// server. Registration order is the order tools appear in tools/list.
func (s *Server) toolCatalog() []*Tool {
	return []*Tool{
		{
			Name:        "crop",
			Description: "Crop an image to the rectangle (x1, y1)-(x2, y2) and save the result.",
			InputSchema: schemaObject(map[string]any{
				"input_path":  inputPathProp(),
				"x1":          prop("integer", "X-coordinate of the top-left corner"),
				"y1":          prop("integer", "Y-coordinate of the top-left corner"),
				"x2":          prop("integer", "X-coordinate of the bottom-right corner (exclusive)"),
				"y2":          prop("integer", "Y-coordinate of the bottom-right corner (exclusive)"),
				"output_path": outputPathProp("_cropped"),
			}, "input_path", "x1", "y1", "x2", "y2"),
			Handler: s.handleCrop,
		},
		{
			Name: "resize",
			Description: "Resize an image by explicit dimensions, a single dimension (preserving aspect ratio), " +
				"or a scale factor (which overrides width and height).",
			InputSchema: schemaObject(map[string]any{
				"input_path": inputPathProp(),
				"width":      prop("integer", "Target width in pixels. If omitted, calculated from height preserving aspect ratio."),
				"height":     prop("integer", "Target height in pixels. If omitted, calculated from width preserving aspect ratio."),
				"scale_factor": prop("number", "Scale factor (e.g. 0.5 for half size, 2.0 for double size). "+
					"Overrides width and height if provided."),
				"interpolation": withEnum(prop("string", "Interpolation method."),
					"nearest", "linear", "area", "cubic", "lanczos"),
				"output_path": outputPathProp("_resized"),
			}, "input_path"),
			Handler: s.handleResize,
		},
		{
			Name: "rotate",
			Description: "Rotate an image by an angle in degrees (positive for counterclockwise). " +
				"The canvas expands so the whole rotated image stays visible.",
			InputSchema: schemaObject(map[string]any{
				"input_path":  inputPathProp(),
				"angle":       prop("number", "Angle of rotation in degrees (positive for counterclockwise)"),
				"output_path": outputPathProp("_rotated"),
			}, "input_path", "angle"),
			Handler: s.handleRotate,
		},
		{
			Name:        "blur",
			Description: "Blur rectangular areas of an image with a Gaussian blur of configurable strength.",
			InputSchema: schemaObject(map[string]any{
				"input_path": inputPathProp(),
				"areas": arrayOf(schemaObject(map[string]any{
					"x1":            prop("integer", "Left edge of the area"),
					"y1":            prop("integer", "Top edge of the area"),
					"x2":            prop("integer", "Right edge of the area"),
					"y2":            prop("integer", "Bottom edge of the area"),
					"blur_strength": prop("integer", "Blur kernel size (odd number). Defaults to the configured blur strength."),
				}, "x1", "y1", "x2", "y2"), "Areas to blur."),
				"output_path": outputPathProp("_blurred"),
			}, "input_path", "areas"),
			Handler: s.handleBlur,
		},
		{
			Name: "fill",
			Description: "Fill areas of an image with a color, blended by opacity, or cut them out as " +
				"transparency by omitting the color (or passing alpha 0). Areas are rectangles or polygons; " +
				"invert_areas fills everything else instead.",
			InputSchema: schemaObject(map[string]any{
				"input_path": inputPathProp(),
				"areas": arrayOf(schemaObject(map[string]any{
					"x1": prop("integer", "Left edge of a rectangular area"),
					"y1": prop("integer", "Top edge of a rectangular area"),
					"x2": prop("integer", "Right edge of a rectangular area"),
					"y2": prop("integer", "Bottom edge of a rectangular area"),
					"polygon": arrayOf(map[string]any{
						"type": "array", "items": map[string]any{"type": "integer"},
						"minItems": 2, "maxItems": 2,
					}, "Closed polygon as [x, y] points; takes precedence over the rectangle."),
					"color":   colorProp("Fill color. If omitted (or alpha 0) the area is cut out as transparency."),
					"opacity": withRange(prop("number", "Blend opacity, 0.0-1.0. Default 0.5."), 0, 1),
				}), "Areas to fill."),
				"invert_areas": withDefault(prop("boolean", "Fill everything except the listed areas."), false),
				"output_path":  outputPathProp("_filled"),
			}, "input_path", "areas"),
			Handler: s.handleFill,
		},
		{
			Name: "overlay",
			Description: "Composite an overlay image onto a base image at (x, y), honoring the overlay's " +
				"alpha channel. Parts outside the base are clipped.",
			InputSchema: schemaObject(map[string]any{
				"base_image_path":    prop("string", "Full path to the base image (must be a full path)"),
				"overlay_image_path": prop("string", "Full path to the overlay image (must be a full path)"),
				"x":                  prop("integer", "X-coordinate of the overlay's top-left corner on the base image"),
				"y":                  prop("integer", "Y-coordinate of the overlay's top-left corner on the base image"),
				"output_path":        outputPathProp("_overlaid"),
			}, "base_image_path", "overlay_image_path", "x", "y"),
			Handler: s.handleOverlay,
		},
		{
			Name:        "draw_rectangles",
			Description: "Draw one or more rectangles on an image.",
			InputSchema: schemaObject(map[string]any{
				"input_path": inputPathProp(),
				"rectangles": arrayOf(schemaObject(map[string]any{
					"x1":        prop("integer", "Left edge"),
					"y1":        prop("integer", "Top edge"),
					"x2":        prop("integer", "Right edge"),
					"y2":        prop("integer", "Bottom edge"),
					"color":     colorProp("Rectangle color."),
					"thickness": prop("integer", "Line thickness. Use -1 for a filled rectangle."),
					"filled":    prop("boolean", "Whether to fill the rectangle."),
				}, "x1", "y1", "x2", "y2"), "Rectangles to draw."),
				"output_path": outputPathProp("_with_rectangles"),
			}, "input_path", "rectangles"),
			Handler: s.handleDrawRectangles,
		},
		{
			Name:        "draw_circles",
			Description: "Draw one or more circles on an image.",
			InputSchema: schemaObject(map[string]any{
				"input_path": inputPathProp(),
				"circles": arrayOf(schemaObject(map[string]any{
					"center_x":  prop("integer", "X-coordinate of the circle's center"),
					"center_y":  prop("integer", "Y-coordinate of the circle's center"),
					"radius":    prop("integer", "Radius of the circle"),
					"color":     colorProp("Circle color."),
					"thickness": prop("integer", "Line thickness. Use -1 for a filled circle."),
					"filled":    prop("boolean", "Whether to fill the circle."),
				}, "center_x", "center_y", "radius"), "Circles to draw."),
				"output_path": outputPathProp("_with_circles"),
			}, "input_path", "circles"),
			Handler: s.handleDrawCircles,
		},
		{
			Name:        "draw_lines",
			Description: "Draw one or more line segments on an image.",
			InputSchema: schemaObject(map[string]any{
				"input_path": inputPathProp(),
				"lines": arrayOf(schemaObject(map[string]any{
					"x1":        prop("integer", "Start point X"),
					"y1":        prop("integer", "Start point Y"),
					"x2":        prop("integer", "End point X"),
					"y2":        prop("integer", "End point Y"),
					"color":     colorProp("Line color."),
					"thickness": prop("integer", "Line thickness."),
				}, "x1", "y1", "x2", "y2"), "Lines to draw."),
				"output_path": outputPathProp("_with_lines"),
			}, "input_path", "lines"),
			Handler: s.handleDrawLines,
		},
		{
			Name:        "draw_arrows",
			Description: "Draw one or more arrows on an image, each pointing from (x1, y1) to (x2, y2).",
			InputSchema: schemaObject(map[string]any{
				"input_path": inputPathProp(),
				"arrows": arrayOf(schemaObject(map[string]any{
					"x1":         prop("integer", "Arrow tail X"),
					"y1":         prop("integer", "Arrow tail Y"),
					"x2":         prop("integer", "Arrow head X"),
					"y2":         prop("integer", "Arrow head Y"),
					"color":      colorProp("Arrow color."),
					"thickness":  prop("integer", "Line thickness."),
					"tip_length": prop("number", "Arrow head length as a fraction of the shaft length. Default 0.1."),
				}, "x1", "y1", "x2", "y2"), "Arrows to draw."),
				"output_path": outputPathProp("_with_arrows"),
			}, "input_path", "arrows"),
			Handler: s.handleDrawArrows,
		},
		{
			Name: "draw_texts",
			Description: "Draw text annotations on an image. (x, y) is the baseline origin of the first character. " +
				"font_face accepts the FONT_HERSHEY_* names for compatibility; bold-family names (DUPLEX, TRIPLEX, " +
				"COMPLEX) render with the embedded bold font, everything else with the regular font.",
			InputSchema: schemaObject(map[string]any{
				"input_path": inputPathProp(),
				"texts": arrayOf(schemaObject(map[string]any{
					"text":       prop("string", "Text to draw"),
					"x":          prop("integer", "Baseline origin X"),
					"y":          prop("integer", "Baseline origin Y"),
					"color":      colorProp("Text color."),
					"font_scale": prop("number", "Font scale. 1.0 maps to a 16px face. Defaults to the configured scale."),
					"font_face":  prop("string", "Font face name (FONT_HERSHEY_SIMPLEX, FONT_HERSHEY_DUPLEX, ...)."),
				}, "text", "x", "y"), "Texts to draw."),
				"output_path": outputPathProp("_with_text"),
			}, "input_path", "texts"),
			Handler: s.handleDrawTexts,
		},
		{
			Name:        "change_color",
			Description: "Re-render an image in a named color palette.",
			InputSchema: schemaObject(map[string]any{
				"input_path":  inputPathProp(),
				"palette":     withEnum(prop("string", "Target palette."), "grayscale", "sepia", "invert"),
				"output_path": outputPathProp("_<palette>"),
			}, "input_path", "palette"),
			Handler: s.handleChangeColor,
		},
		{
			Name:        "get_metainfo",
			Description: "Get metadata about an image file: dimensions, format, color depth, alpha, file size.",
			InputSchema: schemaObject(map[string]any{
				"input_path": inputPathProp(),
			}, "input_path"),
			Handler: s.handleGetMetainfo,
		},
		{
			Name: "detect",
			Description: "Detect objects in an image using a YOLO model (ONNX) from the models directory. " +
				"Models must be downloaded first with the download-models command.",
			InputSchema: schemaObject(map[string]any{
				"input_path": inputPathProp(),
				"confidence": withRange(prop("number", "Confidence threshold for detection (0.0 to 1.0). "+
					"Defaults to the configured threshold."), 0, 1),
				"model_name": prop("string", "Model name to use for detection (e.g. 'yolov8m.onnx'). "+
					"Defaults to the configured model."),
			}, "input_path"),
			Handler: s.handleDetect,
		},
		{
			Name: "find",
			Description: "Find objects in an image matching a text description. Runs object detection and ranks " +
				"detections whose class labels match the description.",
			InputSchema: schemaObject(map[string]any{
				"input_path":  inputPathProp(),
				"description": prop("string", "Text description of the object to find"),
				"confidence": withRange(prop("number", "Confidence threshold for detection (0.0 to 1.0). "+
					"Defaults to the configured threshold."), 0, 1),
				"model_name": prop("string", "Model name to use (e.g. 'yolov8m.onnx'). Defaults to the configured model."),
				"return_all_matches": withDefault(prop("boolean",
					"If true, returns all matching objects; if false, only the best match."), false),
			}, "input_path", "description"),
			Handler: s.handleFind,
		},
		{
			Name: "ocr",
			Description: "Extract text from an image using Tesseract OCR. Returns line-level segments with " +
				"confidence scores and bounding boxes.",
			InputSchema: schemaObject(map[string]any{
				"input_path": inputPathProp(),
				"language": prop("string", "Language code for OCR (e.g. 'en', 'ru', 'fr' or a native Tesseract "+
					"code like 'eng'). Defaults to the configured language."),
			}, "input_path"),
			Handler: s.handleOCR,
		},
		{
			Name:        "get_models",
			Description: "List all models available in the models directory with their descriptions.",
			InputSchema: schemaObject(map[string]any{}),
			Handler:     s.handleGetModels,
		},
		{
			Name: "config",
			Description: "View or update server configuration. action 'get' returns the whole config or one key; " +
				"'set' updates a key for the session (persist=true writes it to the config file); 'reset' drops " +
				"runtime overrides. Keys are dotted, e.g. 'detection.confidence_threshold', 'blur.strength'.",
			InputSchema: schemaObject(map[string]any{
				"action":  withEnum(withDefault(prop("string", "Action to perform."), "get"), "get", "set", "reset"),
				"key":     prop("string", "Dotted configuration key. Optional for 'get', required for 'set'."),
				"value":   map[string]any{"description": "New value for 'set'. Type depends on the key."},
				"persist": withDefault(prop("boolean", "Persist the change to the config file."), false),
			}),
			Handler: s.handleConfig,
		},
	}
}
