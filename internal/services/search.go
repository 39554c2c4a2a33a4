package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/rarchives/ir/internal/fetch"
	"github.com/rarchives/ir/internal/hash"
	"github.com/rarchives/ir/internal/logger"
	"github.com/rarchives/ir/internal/media"
	"github.com/rarchives/ir/internal/repos"
	"github.com/rarchives/ir/internal/types"
	"github.com/rarchives/ir/internal/urls"
)

var userRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// SearchService answers queries against the index. URL searches reuse
// the stored hash when the URL was already ingested; otherwise the
// media is fetched and hashed on the spot (but not indexed).
type SearchService struct {
	imageRepo  repos.ImageRepo
	videoRepo  repos.VideoRepo
	postRepo   repos.PostRepo
	commentRepo repos.CommentRepo
	albumRepo  repos.AlbumRepo
	searchRepo repos.SearchRepo
	fetcher    *fetch.Fetcher
	extractor  *media.Extractor
	resolver   *urls.RedditResolver
	staticRoot string
	log        *logger.Logger
}

func NewSearchService(
	imageRepo repos.ImageRepo,
	videoRepo repos.VideoRepo,
	postRepo repos.PostRepo,
	commentRepo repos.CommentRepo,
	albumRepo repos.AlbumRepo,
	searchRepo repos.SearchRepo,
	fetcher *fetch.Fetcher,
	extractor *media.Extractor,
	resolver *urls.RedditResolver,
	staticRoot string,
	baseLog *logger.Logger,
) *SearchService {
	return &SearchService{
		imageRepo:   imageRepo,
		videoRepo:   videoRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		albumRepo:   albumRepo,
		searchRepo:  searchRepo,
		fetcher:     fetcher,
		extractor:   extractor,
		resolver:    resolver,
		staticRoot:  staticRoot,
		log:         baseLog.With("service", "SearchService"),
	}
}

// SearchImageURL finds indexed images within distance d of the image
// behind url.
func (s *SearchService) SearchImageURL(ctx context.Context, url string, d int) types.SearchResults {
	d = ClampDistance(d)

	queryHash, err := s.imageRepo.GetHashByCleanURL(ctx, nil, urls.Clean(url))
	if err != nil {
		return errorResults(url, err)
	}
	if queryHash == nil {
		buf, err := s.fetcher.Download(url)
		if err != nil {
			return errorResults(url, fmt.Errorf("download: %w", err))
		}
		img, _, err := media.DecodeImage(buf)
		if err != nil {
			return errorResults(url, fmt.Errorf("decode: %w", err))
		}
		queryHash = hash.Dhash(img)
	}

	ids, err := s.searchRepo.SimilarImageIDs(ctx, nil, queryHash, d)
	if err != nil {
		return errorResults(url, err)
	}
	rows, err := s.searchRepo.ImageResults(ctx, nil, ids)
	if err != nil {
		return errorResults(url, err)
	}
	return types.NewSearchResults(url, assembleImageHits(rows, s.staticRoot))
}

// SearchVideoURL finds indexed videos sharing at least minFrames
// frames (within distance d) with the video behind url.
func (s *SearchService) SearchVideoURL(ctx context.Context, url string, d, minFrames int) types.SearchResults {
	d = ClampDistance(d)
	minFrames = ClampMinFrames(minFrames)

	var frameHashes [][]byte

	videoID, err := s.videoRepo.GetIDByCleanURL(ctx, nil, urls.Clean(url))
	if err != nil {
		return errorResults(url, err)
	}
	if videoID != 0 {
		frameHashes, err = s.videoRepo.GetFrameHashes(ctx, nil, videoID)
		if err != nil {
			return errorResults(url, err)
		}
	} else {
		fetchURL := urls.RewriteGifv(url)
		if urls.IsRedditVideo(fetchURL) {
			fetchURL, err = s.resolver.Resolve(ctx, fetchURL)
			if err != nil {
				return errorResults(url, err)
			}
		}
		buf, err := s.fetcher.Download(fetchURL)
		if err != nil {
			return errorResults(url, fmt.Errorf("download: %w", err))
		}
		ext := urls.VideoExt(url)
		if ext == "" {
			ext = "mp4"
		}
		extracted, err := s.extractor.Extract(ctx, buf, ext)
		if err != nil {
			return errorResults(url, fmt.Errorf("extract: %w", err))
		}
		for _, f := range extracted.Frames {
			frameHashes = append(frameHashes, f.Hash)
		}
	}
	if len(frameHashes) == 0 {
		return errorResults(url, fmt.Errorf("no frames extracted"))
	}
	// A short clip cannot be required to match more frames than it has.
	if minFrames > len(frameHashes) {
		minFrames = len(frameHashes)
	}

	ids, err := s.searchRepo.SimilarVideoIDs(ctx, nil, frameHashes, d, minFrames)
	if err != nil {
		return errorResults(url, err)
	}
	rows, err := s.searchRepo.VideoResults(ctx, nil, ids)
	if err != nil {
		return errorResults(url, err)
	}
	return types.NewSearchResults(url, assembleVideoHits(rows, s.staticRoot))
}

// SearchAlbum lists every stored image of a previously ingested album,
// even when the album itself is gone upstream. Unknown albums come
// back as an empty list.
func (s *SearchService) SearchAlbum(ctx context.Context, url string) (types.AlbumResults, error) {
	out := types.AlbumResults{URL: url, Images: []types.AlbumImage{}}

	clean := urls.Clean(url)
	ids, err := s.searchRepo.ImageIDsByAlbumURL(ctx, nil, clean)
	if err != nil {
		return out, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.searchRepo.ImageResults(ctx, nil, ids)
	if err != nil {
		return out, err
	}

	seen := make(map[int64]struct{})
	for _, row := range rows {
		if !row.AlbumURL.Valid || row.AlbumURL.String != clean {
			continue
		}
		if _, dup := seen[row.ImageID]; dup {
			continue
		}
		seen[row.ImageID] = struct{}{}
		out.Images = append(out.Images, types.AlbumImage{
			Thumb:  media.ThumbRel(s.staticRoot, media.KindImage, row.ImageID),
			URL:    row.URL,
			Width:  row.Width,
			Height: row.Height,
		})
	}
	return out, nil
}

// SearchUser lists images from the user's top posts.
func (s *SearchService) SearchUser(ctx context.Context, user string) types.SearchResults {
	if !userRe.MatchString(user) {
		return errorResults(user, fmt.Errorf("invalid username"))
	}
	ids, err := s.searchRepo.ImageIDsByAuthor(ctx, nil, user)
	if err != nil {
		return errorResults(user, err)
	}
	rows, err := s.searchRepo.ImageResults(ctx, nil, ids)
	if err != nil {
		return errorResults(user, err)
	}
	return types.NewSearchResults(user, assembleImageHits(rows, s.staticRoot))
}

// SearchText matches post titles.
func (s *SearchService) SearchText(ctx context.Context, text string) types.SearchResults {
	ids, err := s.searchRepo.ImageIDsByText(ctx, nil, text)
	if err != nil {
		return errorResults(text, err)
	}
	rows, err := s.searchRepo.ImageResults(ctx, nil, ids)
	if err != nil {
		return errorResults(text, err)
	}
	return types.NewSearchResults(text, assembleImageHits(rows, s.staticRoot))
}

// SearchUpload runs an image search on user-supplied bytes, posted as
// a data URL ("data:image/png;base64,....").
func (s *SearchService) SearchUpload(ctx context.Context, dataURL string, d int) types.SearchResults {
	d = ClampDistance(d)

	payload := dataURL
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	buf, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return errorResults("upload", fmt.Errorf("decode upload: %w", err))
	}
	img, _, err := media.DecodeImage(buf)
	if err != nil {
		return errorResults("upload", fmt.Errorf("decode: %w", err))
	}

	ids, err := s.searchRepo.SimilarImageIDs(ctx, nil, hash.Dhash(img), d)
	if err != nil {
		return errorResults("upload", err)
	}
	rows, err := s.searchRepo.ImageResults(ctx, nil, ids)
	if err != nil {
		return errorResults("upload", err)
	}
	return types.NewSearchResults("upload", assembleImageHits(rows, s.staticRoot))
}

// Status reports corpus size per table.
func (s *SearchService) Status(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	var err error
	if counts["posts"], err = s.postRepo.Count(ctx, nil); err != nil {
		return nil, err
	}
	if counts["comments"], err = s.commentRepo.Count(ctx, nil); err != nil {
		return nil, err
	}
	if counts["images"], err = s.imageRepo.Count(ctx, nil); err != nil {
		return nil, err
	}
	if counts["videos"], err = s.videoRepo.Count(ctx, nil); err != nil {
		return nil, err
	}
	if counts["videoframes"], err = s.videoRepo.FrameCount(ctx, nil); err != nil {
		return nil, err
	}
	if counts["albums"], err = s.albumRepo.Count(ctx, nil); err != nil {
		return nil, err
	}
	subs, err := s.searchRepo.Subreddits(ctx, nil)
	if err != nil {
		return nil, err
	}
	counts["subreddits"] = int64(len(subs))
	return counts, nil
}

func (s *SearchService) Subreddits(ctx context.Context) ([]repos.SubredditCount, error) {
	return s.searchRepo.Subreddits(ctx, nil)
}

type VideoThumbs struct {
	VideoID int64    `json:"video_id"`
	Thumbs  []string `json:"thumbs"`
}

// RecentVideoThumbs powers the landing page strip: the latest videos
// with their frame thumbnail paths.
func (s *SearchService) RecentVideoThumbs(ctx context.Context, limit int) ([]VideoThumbs, error) {
	videoIDs, err := s.searchRepo.RecentVideoIDs(ctx, nil, limit)
	if err != nil {
		return nil, err
	}
	result := make([]VideoThumbs, 0, len(videoIDs))
	for _, vid := range videoIDs {
		thumbs, err := s.VideoThumbsByID(ctx, vid)
		if err != nil {
			return nil, err
		}
		result = append(result, thumbs)
	}
	return result, nil
}

// VideoFrameIDs lists the frame ids of one video in sampling order.
// Clients derive thumbnail paths from the ids.
func (s *SearchService) VideoFrameIDs(ctx context.Context, videoID int64) ([]int64, error) {
	ids, err := s.videoRepo.GetFrameIDs(ctx, nil, videoID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// VideoThumbsByID lists the frame thumbnail paths of one video, in
// sampling order.
func (s *SearchService) VideoThumbsByID(ctx context.Context, videoID int64) (VideoThumbs, error) {
	frameIDs, err := s.videoRepo.GetFrameIDs(ctx, nil, videoID)
	if err != nil {
		return VideoThumbs{}, err
	}
	thumbs := make([]string, 0, len(frameIDs))
	for _, fid := range frameIDs {
		thumbs = append(thumbs, media.ThumbRel(s.staticRoot, media.KindVideo, fid))
	}
	return VideoThumbs{VideoID: videoID, Thumbs: thumbs}, nil
}

func errorResults(url string, err error) types.SearchResults {
	return types.SearchResults{URL: url, Hits: []types.SearchHit{}, Error: err.Error()}
}
