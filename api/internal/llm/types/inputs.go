package types

// Stage inputs. Handlers validate required fields before an engine sees the
// document; engines may assume the required fields are populated.

type ImageAnalysisInput struct {
	ImageB64       string `json:"imageBase64"`
	MIME           string `json:"-"`
	DeviceCategory string `json:"deviceCategory,omitempty"`
	Language       string `json:"language,omitempty"`
}

type DescriptionInput struct {
	Description   string               `json:"description"`
	ImageFindings *ImageAnalysisResult `json:"imageFindings,omitempty"`
	Language      string               `json:"language,omitempty"`
}

type QuestionsInput struct {
	DeviceName  string `json:"deviceName"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`

	// Cardinality bounds for the variant being served: the device-question
	// stage wants exactly 5, the description-question stage 3..6.
	Min int `json:"-"`
	Max int `json:"-"`
}

type DiagnosisInput struct {
	DeviceName          string                     `json:"deviceName"`
	DeviceCategory      string                     `json:"deviceCategory,omitempty"`
	ImageFindings       *ImageAnalysisResult       `json:"imageFindings,omitempty"`
	DescriptionFindings *DescriptionAnalysisResult `json:"descriptionFindings,omitempty"`
	Answers             map[string]string          `json:"answers,omitempty"`
	Language            string                     `json:"language,omitempty"`
}

type AlternativeInput struct {
	DiagnosisInput
	RejectedSolution string `json:"rejectedSolution"`
}

type CodeAnalysisInput struct {
	Code     string `json:"code,omitempty"`
	ImageB64 string `json:"imageBase64,omitempty"`
	MIME     string `json:"-"`
	Context  string `json:"context,omitempty"`
	Language string `json:"language,omitempty"`
}
