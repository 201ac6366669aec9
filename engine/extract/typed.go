package extract

import "encoding/json"

// playerResponse is the minimal strict schema: only fields the application
// displays. Unknown fields are ignored by the decoder.
type playerResponse struct {
	VideoDetails struct {
		Title            string `json:"title"`
		Author           string `json:"author"`
		ChannelID        string `json:"channelId"`
		ShortDescription string `json:"shortDescription"`
		ViewCount        string `json:"viewCount"`
		LengthSeconds    string `json:"lengthSeconds"`
	} `json:"videoDetails"`
	Microformat struct {
		PlayerMicroformatRenderer struct {
			PublishDate string `json:"publishDate"`
			ViewCount   string `json:"viewCount"`
		} `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
}

// decodeTyped attempts the strict decode. Failure is non-fatal: every
// field simply starts out missing and the cascades take over.
func decodeTyped(blob string) playerResponse {
	var pr playerResponse
	if blob == "" {
		return pr
	}
	_ = json.Unmarshal([]byte(blob), &pr)
	return pr
}
