// Package remote adapts the transfer capability's directory listing into
// the same observed-entry shape the local scanner produces, so the
// reconciliation engine sees both stores uniformly.
package remote

import (
	"context"
	"path"
	"sort"

	"github.com/ve-data-science/vedatool/internal/scan"
	"github.com/ve-data-science/vedatool/internal/transfer"
)

// listing depth guard, matching the transfer service's recursion advice
const maxDepth = 10

// Catalog lists a dataset's remote root through the transfer capability.
// Checksums are never inferred remotely; comparison falls back to
// size+timestamp.
type Catalog struct {
	client   transfer.Client
	endpoint string
	root     string
	ignore   *scan.IgnoreList
}

func NewCatalog(client transfer.Client, endpoint, root string) *Catalog {
	return &Catalog{
		client:   client,
		endpoint: endpoint,
		root:     root,
		ignore:   scan.DefaultIgnore(),
	}
}

// List walks the remote root breadth-first and returns observed entries
// sorted by path, tagged OriginRemote. Transfer failures propagate with the
// transfer package's transient/fatal classification intact.
func (c *Catalog) List(ctx context.Context) ([]*scan.Entry, error) {
	type dirItem struct {
		abs   string
		rel   string
		depth int
	}

	var entries []*scan.Entry
	queue := []dirItem{{abs: c.root, rel: "", depth: 0}}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		listed, err := c.client.List(ctx, c.endpoint, dir.abs)
		if err != nil {
			return nil, err
		}

		for _, item := range listed {
			rel := item.Name
			if dir.rel != "" {
				rel = dir.rel + "/" + item.Name
			}
			if c.ignore.ShouldIgnore(rel) {
				continue
			}

			switch item.Type {
			case transfer.TypeDir:
				if dir.depth < maxDepth {
					queue = append(queue, dirItem{
						abs:   path.Join(dir.abs, item.Name),
						rel:   rel,
						depth: dir.depth + 1,
					})
				}
			case transfer.TypeFile:
				entries = append(entries, &scan.Entry{
					Path:    rel,
					Size:    item.Size,
					ModTime: item.LastModified,
					Origin:  scan.OriginRemote,
				})
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}
