package registry

// Model describes one downloadable model artifact.
type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Version       string `json:"version"`
	Language      string `json:"language,omitempty"`
	SizeMB        int    `json:"size_mb"`
	URL           string `json:"url"`
	Installed     bool   `json:"installed"`
	InstalledPath string `json:"installed_path,omitempty"`
}

const modelHost = "https://paddle-model-ecology.bj.bcebos.com/paddlex/official_inference_model/paddle3.0.0/"

// table is the fixed model registry. Order is the order models are listed in.
var table = []Model{
	{
		ID:      "PP-OCRv5_server_det",
		Name:    "PP-OCRv5 Server Detection",
		Type:    "detection",
		Version: "v5",
		SizeMB:  110,
		URL:     modelHost + "PP-OCRv5_server_det_infer.tar",
	},
	{
		ID:      "PP-OCRv5_mobile_det",
		Name:    "PP-OCRv5 Mobile Detection",
		Type:    "detection",
		Version: "v5",
		SizeMB:  4,
		URL:     modelHost + "PP-OCRv5_mobile_det_infer.tar",
	},
	{
		ID:      "PP-OCRv4_server_det",
		Name:    "PP-OCRv4 Server Detection",
		Type:    "detection",
		Version: "v4",
		SizeMB:  110,
		URL:     modelHost + "PP-OCRv4_server_det_infer.tar",
	},
	{
		ID:      "PP-OCRv4_mobile_det",
		Name:    "PP-OCRv4 Mobile Detection",
		Type:    "detection",
		Version: "v4",
		SizeMB:  4,
		URL:     modelHost + "PP-OCRv4_mobile_det_infer.tar",
	},
	{
		ID:      "PP-OCRv3_mobile_det",
		Name:    "PP-OCRv3 Mobile Detection",
		Type:    "detection",
		Version: "v3",
		SizeMB:  2,
		URL:     modelHost + "PP-OCRv3_mobile_det_infer.tar",
	},
	{
		ID:       "PP-OCRv5_server_rec_ch",
		Name:     "PP-OCRv5 Server Recognition (Chinese)",
		Type:     "recognition",
		Version:  "v5",
		Language: "ch",
		SizeMB:   80,
		URL:      modelHost + "PP-OCRv5_server_rec_infer.tar",
	},
	{
		ID:       "PP-OCRv5_mobile_rec_ch",
		Name:     "PP-OCRv5 Mobile Recognition (Chinese)",
		Type:     "recognition",
		Version:  "v5",
		Language: "ch",
		SizeMB:   10,
		URL:      modelHost + "PP-OCRv5_mobile_rec_infer.tar",
	},
	{
		ID:       "PP-OCRv4_mobile_rec_en",
		Name:     "PP-OCRv4 Mobile Recognition (English)",
		Type:     "recognition",
		Version:  "v4",
		Language: "en",
		SizeMB:   10,
		URL:      "https://paddleocr.bj.bcebos.com/PP-OCRv4/english/en_PP-OCRv4_rec_infer.tar",
	},
	{
		ID:       "PP-OCRv3_rec_korean",
		Name:     "PP-OCRv3 Recognition (Korean)",
		Type:     "recognition",
		Version:  "v3",
		Language: "korean",
		SizeMB:   12,
		URL:      modelHost + "korean_PP-OCRv3_mobile_rec_infer.tar",
	},
	{
		ID:       "PP-OCRv3_rec_japan",
		Name:     "PP-OCRv3 Recognition (Japanese)",
		Type:     "recognition",
		Version:  "v3",
		Language: "japan",
		SizeMB:   12,
		URL:      modelHost + "japan_PP-OCRv3_mobile_rec_infer.tar",
	},
	{
		ID:       "PP-OCRv3_rec_arabic",
		Name:     "PP-OCRv3 Recognition (Arabic)",
		Type:     "recognition",
		Version:  "v3",
		Language: "arabic",
		SizeMB:   12,
		URL:      modelHost + "arabic_PP-OCRv3_mobile_rec_infer.tar",
	},
	{
		ID:       "PP-OCRv3_rec_devanagari",
		Name:     "PP-OCRv3 Recognition (Hindi/Devanagari)",
		Type:     "recognition",
		Version:  "v3",
		Language: "devanagari",
		SizeMB:   12,
		URL:      modelHost + "devanagari_PP-OCRv3_mobile_rec_infer.tar",
	},
	{
		ID:       "PP-OCRv3_rec_latin",
		Name:     "PP-OCRv3 Recognition (Latin)",
		Type:     "recognition",
		Version:  "v3",
		Language: "latin",
		SizeMB:   12,
		URL:      modelHost + "latin_PP-OCRv3_mobile_rec_infer.tar",
	},
	{
		ID:       "PP-OCRv3_rec_cyrillic",
		Name:     "PP-OCRv3 Recognition (Cyrillic)",
		Type:     "recognition",
		Version:  "v3",
		Language: "cyrillic",
		SizeMB:   12,
		URL:      modelHost + "cyrillic_PP-OCRv3_mobile_rec_infer.tar",
	},
	{
		ID:       "PP-OCRv3_rec_tamil",
		Name:     "PP-OCRv3 Recognition (Tamil)",
		Type:     "recognition",
		Version:  "v3",
		Language: "ta",
		SizeMB:   12,
		URL:      modelHost + "ta_PP-OCRv3_mobile_rec_infer.tar",
	},
	{
		ID:       "PP-OCRv3_rec_telugu",
		Name:     "PP-OCRv3 Recognition (Telugu)",
		Type:     "recognition",
		Version:  "v3",
		Language: "te",
		SizeMB:   12,
		URL:      modelHost + "te_PP-OCRv3_mobile_rec_infer.tar",
	},
	{
		ID:      "PP-OCRv3_cls",
		Name:    "PP-OCRv3 Angle Classification",
		Type:    "classification",
		Version: "v3",
		SizeMB:  2,
		URL:     "https://paddleocr.bj.bcebos.com/dygraph_v2.0/ch/ch_ppocr_mobile_v2.0_cls_infer.tar",
	},
}
