package domain

// DefaultDimensions is the vector size of the bge family used for the knowledge corpus.
const DefaultDimensions = 768

// KeyPrefix namespaces every key this service writes to the shared cache store.
const KeyPrefix = "skinrec:"

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model               string
	Dimensions          int
	DistanceMetric      string
	DocumentInstruction string
	QueryInstruction    string
}

// DefaultVectorConfig returns the defaults tuned for bge-large-zh-v1.5.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:               "bge-large-zh-v1.5",
		Dimensions:          DefaultDimensions,
		DistanceMetric:      "l2",
		DocumentInstruction: "",
		QueryInstruction:    "为这个句子生成表示以用于检索相关文章：",
	}
}
