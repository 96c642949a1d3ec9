package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"media-gallery/pkg/blobstore"
	"media-gallery/pkg/metrics"
)

const (
	// DefaultLinkTitle is shown for pages that carry no title
	DefaultLinkTitle = "Untitled link"

	defaultImageExt  = ".jpg"
	linkUserAgent    = "media-gallery/1.0 (+link preview)"
	maxMetadataBytes = 4 << 20
)

// Link ingestion results used as metric labels
const (
	resultSuccess         = "success"
	resultInvalid         = "invalid"
	resultMetadataFailed  = "metadata_fetch_failed"
	resultNoImage         = "no_image_found"
	resultDownloadFailed  = "image_download_failed"
	resultUnexpectedError = "error"
)

// Metadata is the Open-Graph information extracted from a page
type Metadata struct {
	Title  string
	Images []string
}

// LinkResult describes a downloaded link thumbnail
type LinkResult struct {
	Filename string
	Title    string
	Path     string
}

// LinkResolver turns a URL into a downloaded thumbnail plus a display title
type LinkResolver struct {
	client        *http.Client
	blobs         blobstore.Store
	maxImageBytes int64
	now           func() time.Time
}

// NewLinkResolver creates a resolver. A nil client uses one with a 30 second
// timeout; maxImageBytes <= 0 disables the size cap.
func NewLinkResolver(blobs blobstore.Store, client *http.Client, maxImageBytes int64) *LinkResolver {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &LinkResolver{
		client:        client,
		blobs:         blobs,
		maxImageBytes: maxImageBytes,
		now:           time.Now,
	}
}

// Resolve fetches the page metadata, downloads its image into category and
// returns the stored file. It never touches the catalog; any failure after
// the blob was opened removes it again.
func (r *LinkResolver) Resolve(ctx context.Context, category, link string) (result *LinkResult, err error) {
	defer func() { metrics.RecordLinkIngestion(ingestionResult(err)) }()

	if err := blobstore.ValidateName(category); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	pageURL, err := parseHTTPURL(link)
	if err != nil {
		return nil, err
	}

	meta, err := r.FetchMetadata(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	imageURL, err := candidateImage(pageURL, meta)
	if err != nil {
		return nil, err
	}

	filename := imageFilename(imageURL, r.now())
	relPath, err := r.download(ctx, category, filename, imageURL)
	if err != nil {
		return nil, err
	}

	title := meta.Title
	if title == "" {
		title = DefaultLinkTitle
	}

	slog.InfoContext(ctx, "Link thumbnail downloaded", "link", link, "image", imageURL.String(), "path", relPath)
	return &LinkResult{Filename: filename, Title: title, Path: relPath}, nil
}

// FetchMetadata retrieves and parses the Open-Graph tags of a page
func (r *LinkResolver) FetchMetadata(ctx context.Context, pageURL *url.URL) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataFetchFailed, err)
	}
	req.Header.Set("User-Agent", linkUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrMetadataFetchFailed, pageURL, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxMetadataBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse page: %v", ErrMetadataFetchFailed, err)
	}

	return parseOpenGraph(doc), nil
}

func (r *LinkResolver) download(ctx context.Context, category, filename string, imageURL *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageDownloadFailed, err)
	}
	req.Header.Set("User-Agent", linkUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned status %d", ErrImageDownloadFailed, imageURL, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if r.maxImageBytes > 0 {
		body = http.MaxBytesReader(nil, resp.Body, r.maxImageBytes)
	}

	relPath, err := r.blobs.Put(ctx, category, filename, body)
	if err != nil {
		if delErr := r.blobs.Delete(ctx, blobstore.RelPath(category, filename)); delErr != nil {
			slog.WarnContext(ctx, "Failed to remove partial download", "file", filename, "error", delErr)
		}
		return "", fmt.Errorf("%w: %v", ErrImageDownloadFailed, err)
	}
	return relPath, nil
}

func parseHTTPURL(link string) (*url.URL, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, fmt.Errorf("%w: link is required", ErrValidation)
	}

	u, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid link: %v", ErrValidation, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: link must be an http or https URL", ErrValidation)
	}
	return u, nil
}

// candidateImage returns the first usable image, resolved against the page
func candidateImage(pageURL *url.URL, meta *Metadata) (*url.URL, error) {
	for _, raw := range meta.Images {
		u, err := pageURL.Parse(raw)
		if err != nil {
			continue
		}
		if u.Scheme == "http" || u.Scheme == "https" {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoImageFound, pageURL)
}

// imageFilename names a downloaded thumbnail og_<unix millis><ext>, taking
// the extension from the image URL path and defaulting to .jpg
func imageFilename(imageURL *url.URL, now time.Time) string {
	ext := path.Ext(imageURL.Path)
	if ext == "" || ext == "." || strings.ContainsAny(ext, `\`) {
		ext = defaultImageExt
	}
	return fmt.Sprintf("og_%d%s", now.UnixMilli(), ext)
}

// parseOpenGraph walks the document collecting og/twitter tags. Titles are
// taken from og:title, then twitter:title, then the <title> element.
func parseOpenGraph(doc *html.Node) *Metadata {
	var ogTitle, twitterTitle, docTitle string
	meta := &Metadata{}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Meta:
				key := strings.ToLower(attr(n, "property"))
				if key == "" {
					key = strings.ToLower(attr(n, "name"))
				}
				content := strings.TrimSpace(attr(n, "content"))
				if content == "" {
					break
				}
				switch key {
				case "og:title":
					if ogTitle == "" {
						ogTitle = content
					}
				case "twitter:title":
					if twitterTitle == "" {
						twitterTitle = content
					}
				case "og:image", "og:image:url", "og:image:secure_url", "twitter:image", "twitter:image:src":
					meta.Images = append(meta.Images, content)
				}
			case atom.Title:
				if docTitle == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					docTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	switch {
	case ogTitle != "":
		meta.Title = ogTitle
	case twitterTitle != "":
		meta.Title = twitterTitle
	default:
		meta.Title = docTitle
	}
	return meta
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func ingestionResult(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, ErrValidation):
		return resultInvalid
	case errors.Is(err, ErrMetadataFetchFailed):
		return resultMetadataFailed
	case errors.Is(err, ErrNoImageFound):
		return resultNoImage
	case errors.Is(err, ErrImageDownloadFailed):
		return resultDownloadFailed
	default:
		return resultUnexpectedError
	}
}
