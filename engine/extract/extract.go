package extract

import "github.com/tidwall/gjson"

// Extract recovers the metadata record for one video from fetched
// watch-page markup. The id is supplied by the caller and is never derived
// from (or overwritten by) page content.
//
// It fails only when neither embedded object can be located; any page with
// at least ytInitialData still yields a partial record, leaving title and
// author empty for the caller's oEmbed fallback.
func Extract(id, doc string) (VideoMetadata, error) {
	player, okPlayer := LocateObject(doc, playerResponseMarkers, `"videoDetails"`)
	data, okData := LocateObject(doc, initialDataMarkers, `"contents"`)
	if !okPlayer && !okData {
		return VideoMetadata{}, ErrNoPlayerResponse
	}

	p := &page{doc: doc}
	if okPlayer {
		p.playerBlob = player.Text
		p.typed = decodeTyped(player.Text)
		p.playerTree = gjson.Parse(player.Text)
	}
	if okData {
		p.dataBlob = data.Text
		p.dataTree = gjson.Parse(data.Text)
	}

	meta := VideoMetadata{ID: id}
	meta.Title = p.title()
	meta.Author = p.author()
	meta.ChannelID = p.channelID()
	meta.ShortDescription = p.shortDescription()
	meta.RawViewCountText, meta.ViewCountText = p.viewCount()
	meta.PublishedTimeText = p.publishedTime()
	meta.DurationSeconds = p.durationSeconds()
	meta.DurationText = FormatDuration(meta.DurationSeconds)
	meta.LongDescription = p.longDescription(meta.ShortDescription)
	return meta, nil
}
