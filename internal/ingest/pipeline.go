package ingest

import (
	"context"
	"errors"

	"github.com/rarchives/ir/internal/fetch"
	"github.com/rarchives/ir/internal/hash"
	"github.com/rarchives/ir/internal/logger"
	"github.com/rarchives/ir/internal/media"
	"github.com/rarchives/ir/internal/repos"
	"github.com/rarchives/ir/internal/types"
	"github.com/rarchives/ir/internal/urls"
)

// Pipeline turns one bus envelope into rows: the post or comment, the
// media behind every link it carries, and the bindings between them.
// It is stateless apart from its repos, so any number of workers can
// share one instance. The fetcher is per-worker and passed in.
type Pipeline struct {
	postRepo    repos.PostRepo
	commentRepo repos.CommentRepo
	imageRepo   repos.ImageRepo
	videoRepo   repos.VideoRepo
	albumRepo   repos.AlbumRepo
	mediaURLs   repos.MediaURLRepo
	extractor   *media.Extractor
	expander    urls.Expander
	resolver    *urls.RedditResolver
	thumbs      *media.ThumbStore
	skipRules   *urls.SkipRules
	log         *logger.Logger
}

func NewPipeline(
	postRepo repos.PostRepo,
	commentRepo repos.CommentRepo,
	imageRepo repos.ImageRepo,
	videoRepo repos.VideoRepo,
	albumRepo repos.AlbumRepo,
	mediaURLs repos.MediaURLRepo,
	extractor *media.Extractor,
	expander urls.Expander,
	resolver *urls.RedditResolver,
	thumbs *media.ThumbStore,
	skipRules *urls.SkipRules,
	baseLog *logger.Logger,
) *Pipeline {
	return &Pipeline{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		imageRepo:   imageRepo,
		videoRepo:   videoRepo,
		albumRepo:   albumRepo,
		mediaURLs:   mediaURLs,
		extractor:   extractor,
		expander:    expander,
		resolver:    resolver,
		thumbs:      thumbs,
		skipRules:   skipRules,
		log:         baseLog.With("service", "Pipeline"),
	}
}

// HandleEnvelope processes one raw bus message. Panics from decoders
// on hostile media are contained here so a worker never dies on one
// bad message.
func (p *Pipeline) HandleEnvelope(ctx context.Context, f *fetch.Fetcher, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Panic handling envelope", "panic", r)
		}
	}()

	env, err := ParseEnvelope(raw)
	if err != nil {
		p.log.Warn("Undecodable envelope", "error", err)
		return
	}
	if env.IsPost() {
		p.handlePost(ctx, f, env)
	} else {
		p.handleComment(ctx, f, env)
	}
}

func (p *Pipeline) handlePost(ctx context.Context, f *fetch.Fetcher, env *Envelope) {
	post := &types.Post{
		Hexid:     env.ID,
		Title:     *env.Title,
		URL:       env.URL,
		Text:      env.Selftext,
		Author:    env.Author,
		Permalink: env.Permalink,
		Subreddit: env.Subreddit,
		Comments:  env.NumComments,
		Ups:       env.Ups,
		Downs:     env.Downs,
		Score:     env.Score,
		Created:   int64(env.CreatedUTC),
		IsSelf:    env.IsSelf,
		Over18:    env.Over18,
	}
	postID, err := p.postRepo.Insert(ctx, nil, post)
	if err != nil {
		p.log.Error("Post insert failed", "hexid", env.ID, "error", err)
		return
	}
	if postID == 0 {
		// Already indexed; the firehose replays posts on edits.
		return
	}

	var links []string
	if env.IsSelf {
		links = urls.LinksFromBody(env.Selftext)
	} else if env.URL != "" {
		links = []string{env.URL}
	}
	for _, link := range links {
		p.handleURL(ctx, f, link, &postID, nil)
	}
}

func (p *Pipeline) handleComment(ctx context.Context, f *fetch.Fetcher, env *Envelope) {
	postID, err := p.postRepo.GetIDByHexid(ctx, nil, env.ParentHexid())
	if err != nil {
		p.log.Error("Post lookup failed", "hexid", env.ParentHexid(), "error", err)
		return
	}
	if postID == 0 {
		// Comments only matter under posts we indexed.
		return
	}

	// A comment earns a row only when its body carries at least one
	// link that classifies as media; everything else on the firehose
	// is noise.
	var links []string
	for _, link := range urls.LinksFromBody(env.Body) {
		if urls.Classify(link, p.skipRules) != urls.KindSkip {
			links = append(links, link)
		}
	}
	if len(links) == 0 {
		return
	}

	comment := &types.Comment{
		PostID:  postID,
		Hexid:   env.ID,
		Author:  env.Author,
		Body:    env.Body,
		Ups:     env.Ups,
		Downs:   env.Downs,
		Created: int64(env.CreatedUTC),
	}
	commentID, err := p.commentRepo.Insert(ctx, nil, comment)
	if err != nil {
		p.log.Error("Comment insert failed", "hexid", env.ID, "error", err)
		return
	}
	if commentID == 0 {
		return
	}

	for _, link := range links {
		p.handleURL(ctx, f, link, &postID, &commentID)
	}
}

// handleURL routes one link: direct media is fetched and indexed,
// reddit-hosted video goes through yt-dlp, anything else is handed to
// the gallery expander. Expansions with more than one child become an
// album.
func (p *Pipeline) handleURL(ctx context.Context, f *fetch.Fetcher, url string, postID, commentID *int64) {
	switch urls.Classify(url, p.skipRules) {
	case urls.KindSkip:
		return
	case urls.KindImage:
		p.handleImage(ctx, f, url, nil, postID, commentID)
	case urls.KindVideo:
		p.handleVideo(ctx, f, url, postID, commentID)
	case urls.KindRedditVideo:
		p.handleVideo(ctx, f, url, postID, commentID)
	case urls.KindIndirect:
		p.handleIndirect(ctx, f, url, postID, commentID)
	}
}

func (p *Pipeline) handleIndirect(ctx context.Context, f *fetch.Fetcher, url string, postID, commentID *int64) {
	children, err := p.expander.Expand(ctx, url)
	if err != nil {
		p.log.Debug("Expansion failed", "url", url, "error", err)
		return
	}

	var albumID *int64
	if len(children) > 1 {
		id, err := p.albumRepo.GetOrCreate(ctx, nil, urls.Clean(url))
		if err != nil {
			p.log.Error("Album insert failed", "url", url, "error", err)
			return
		}
		albumID = &id
	}

	for _, child := range children {
		if urls.IsImageLink(child) {
			p.handleImage(ctx, f, child, albumID, postID, commentID)
		} else if urls.IsVideoLink(child) {
			p.handleVideo(ctx, f, child, postID, commentID)
		}
	}
}

func (p *Pipeline) handleImage(ctx context.Context, f *fetch.Fetcher, url string, albumID, postID, commentID *int64) {
	clean := urls.Clean(url)

	imageID, err := p.imageRepo.GetIDByCleanURL(ctx, nil, clean)
	if err != nil {
		p.log.Error("Image url lookup failed", "url", url, "error", err)
		return
	}
	if imageID == 0 {
		imageID = p.ingestImage(ctx, f, url)
		if imageID == 0 {
			return
		}
	}

	p.mediaURLs.BindImage(ctx, nil, &types.ImageURL{
		URL:       url,
		CleanURL:  clean,
		ImageID:   imageID,
		AlbumID:   albumID,
		PostID:    postID,
		CommentID: commentID,
	})
}

// ingestImage downloads, hashes and stores an image, writing the
// thumbnail only when this process created the row. Returns 0 when the
// image cannot be fetched or decoded.
func (p *Pipeline) ingestImage(ctx context.Context, f *fetch.Fetcher, url string) int64 {
	buf, err := f.Download(url)
	if err != nil {
		if !errors.Is(err, fetch.ErrNotFound) {
			p.log.Debug("Image download failed", "url", url, "error", err)
		}
		return 0
	}
	img, _, err := media.DecodeImage(buf)
	if err != nil {
		p.log.Debug("Image decode failed", "url", url, "error", err)
		return 0
	}

	bounds := img.Bounds()
	record := &types.Image{
		Sha1:   media.Sha1Hex(buf),
		Hash:   hash.Dhash(img),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Bytes:  len(buf),
	}
	imageID, created, err := p.imageRepo.Upsert(ctx, nil, record)
	if err != nil {
		p.log.Error("Image upsert failed", "url", url, "error", err)
		return 0
	}
	if created {
		if err := p.thumbs.WriteImageThumb(imageID, img); err != nil {
			p.log.Warn("Thumb write failed", "image_id", imageID, "error", err)
		}
	}
	return imageID
}

func (p *Pipeline) handleVideo(ctx context.Context, f *fetch.Fetcher, url string, postID, commentID *int64) {
	clean := urls.Clean(url)

	videoID, err := p.videoRepo.GetIDByCleanURL(ctx, nil, clean)
	if err != nil {
		p.log.Error("Video url lookup failed", "url", url, "error", err)
		return
	}
	if videoID == 0 {
		videoID = p.ingestVideo(ctx, f, url)
		if videoID == 0 {
			return
		}
	}

	p.mediaURLs.BindVideo(ctx, nil, &types.VideoURL{
		URL:       url,
		CleanURL:  clean,
		VideoID:   videoID,
		PostID:    postID,
		CommentID: commentID,
	})
}

func (p *Pipeline) ingestVideo(ctx context.Context, f *fetch.Fetcher, url string) int64 {
	fetchURL := urls.RewriteGifv(url)
	if urls.IsRedditVideo(fetchURL) {
		resolved, err := p.resolver.Resolve(ctx, fetchURL)
		if err != nil {
			p.log.Debug("Reddit video resolve failed", "url", url, "error", err)
			return 0
		}
		fetchURL = resolved
	}

	buf, err := f.Download(fetchURL)
	if err != nil {
		if !errors.Is(err, fetch.ErrNotFound) {
			p.log.Debug("Video download failed", "url", url, "error", err)
		}
		return 0
	}

	sha1 := media.Sha1Hex(buf)
	videoID, err := p.videoRepo.GetIDBySha1(ctx, nil, sha1)
	if err != nil {
		p.log.Error("Video lookup failed", "url", url, "error", err)
		return 0
	}
	if videoID != 0 {
		return videoID
	}

	ext := urls.VideoExt(url)
	if ext == "" {
		ext = "mp4"
	}
	extracted, err := p.extractor.Extract(ctx, buf, ext)
	if err != nil {
		p.log.Debug("Frame extraction failed", "url", url, "error", err)
		return 0
	}
	if len(extracted.Frames) == 0 {
		p.log.Debug("No frames extracted", "url", url)
		return 0
	}

	record := &types.Video{
		Sha1:     sha1,
		Width:    extracted.Info.Width,
		Height:   extracted.Info.Height,
		Bitrate:  extracted.Info.Bitrate,
		Codec:    extracted.Info.Codec,
		Format:   extracted.Info.Format,
		Duration: extracted.Info.Duration,
		Frames:   len(extracted.Frames),
		Bytes:    len(buf),
		Probe:    []byte(extracted.Info.Raw),
	}
	videoID, created, err := p.videoRepo.Upsert(ctx, nil, record)
	if err != nil {
		p.log.Error("Video upsert failed", "url", url, "error", err)
		return 0
	}
	if !created {
		return videoID
	}

	hashes := make([][]byte, 0, len(extracted.Frames))
	for _, fr := range extracted.Frames {
		hashes = append(hashes, fr.Hash)
	}
	frameIDs, err := p.videoRepo.InsertFrames(ctx, nil, videoID, hashes)
	if err != nil {
		p.log.Error("Frame insert failed", "video_id", videoID, "error", err)
		return videoID
	}
	for i, frameID := range frameIDs {
		if err := p.thumbs.WriteFrameThumb(frameID, extracted.Frames[i].Thumb); err != nil {
			p.log.Warn("Frame thumb write failed", "frame_id", frameID, "error", err)
		}
	}
	return videoID
}
