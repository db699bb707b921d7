package proto

import "google.golang.org/protobuf/types/known/structpb"

type fields map[string]*structpb.Value

func (f fields) build() *structpb.Struct {
	return &structpb.Struct{Fields: f}
}

func str(s string) *structpb.Value { return structpb.NewStringValue(s) }

func num(n float64) *structpb.Value { return structpb.NewNumberValue(n) }

func list(vs []*structpb.Value) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: vs})
}

func strs(ss []string) *structpb.Value {
	vs := make([]*structpb.Value, 0, len(ss))
	for _, s := range ss {
		vs = append(vs, str(s))
	}
	return list(vs)
}

// Missing or mistyped fields read as zero values.

func getString(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func getNumber(s *structpb.Struct, key string) float64 {
	return s.GetFields()[key].GetNumberValue()
}

func getStrings(s *structpb.Struct, key string) []string {
	values := s.GetFields()[key].GetListValue().GetValues()
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.GetStringValue())
	}
	return out
}

func getStructs(s *structpb.Struct, key string) []*structpb.Struct {
	var out []*structpb.Struct
	for _, v := range s.GetFields()[key].GetListValue().GetValues() {
		if st := v.GetStructValue(); st != nil {
			out = append(out, st)
		}
	}
	return out
}
