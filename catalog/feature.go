package catalog

// Kind tags the shape of a Feature.
type Kind int

const (
	Scalar Kind = iota
	Array
	Record
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Array:
		return "array"
	case Record:
		return "record"
	}
	return "unknown"
}

// Feature describes one field of a manifest line. Scalars carry a DType, arrays
// carry their element in Elem and records carry their members in Fields.
type Feature struct {
	Name   string
	Kind   Kind
	DType  string
	Elem   *Feature
	Fields []Feature
}

func value(name, dtype string) Feature {
	return Feature{Name: name, Kind: Scalar, DType: dtype}
}

func sequence(name string, elem Feature) Feature {
	return Feature{Name: name, Kind: Array, Elem: &elem}
}

// ManifestFeatures is the shape of a manifest line.
func ManifestFeatures() []Feature {
	return []Feature{
		value("group_id", "string"),
		value("mask_path", "string"),
		sequence("bounding_box", value("", "float32")),
		value("mask_width", "int32"),
		value("mask_height", "int32"),
		value("dimensions_match", "bool"),
		sequence("images", Feature{Kind: Record, Fields: []Feature{
			value("path", "string"),
			value("timestamp_start", "string"),
			value("timestamp_end", "string"),
			value("tile_id", "string"),
			value("season", "string"),
			value("width", "int32"),
			value("height", "int32"),
		}}),
	}
}
