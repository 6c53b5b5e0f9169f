package catalog

// Field is the Croissant rendering of a Feature.
type Field struct {
	Name        string  `json:"name" yaml:"name"`
	IsArray     bool    `json:"isArray" yaml:"isArray"`
	DataType    string  `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	Features    []Field `json:"features,omitempty" yaml:"features,omitempty"`
	Description string  `json:"description" yaml:"description"`
}

const unknownType = "unknown"

// ToCroissant converts features to Croissant field descriptions. Anything that is
// not a scalar, a record or an array of scalars or records is reported with the
// "unknown" data type.
func ToCroissant(features []Feature) []Field {
	fields := make([]Field, 0, len(features))
	for _, f := range features {
		fields = append(fields, convertFeature(f))
	}
	return fields
}

func convertFeature(f Feature) Field {
	switch f.Kind {
	case Scalar:
		return Field{Name: f.Name, DataType: f.DType, Description: f.Name + " field"}
	case Array:
		field := Field{Name: f.Name, IsArray: true, Description: f.Name + " sequence"}
		switch {
		case f.Elem == nil:
			field.DataType = unknownType
		case f.Elem.Kind == Record:
			field.Features = ToCroissant(f.Elem.Fields)
		case f.Elem.Kind == Scalar:
			field.DataType = f.Elem.DType
		default:
			field.DataType = unknownType
		}
		return field
	case Record:
		return Field{Name: f.Name, Features: ToCroissant(f.Fields), Description: f.Name + " nested structure"}
	}
	return Field{Name: f.Name, DataType: unknownType, Description: f.Name + " field"}
}
