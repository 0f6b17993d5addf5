package search

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/puzpuzpuz/xsync"
	"github.com/questx-lab/habit/pkg/logger"
	"github.com/questx-lab/habit/pkg/xcontext"
)

const (
	UserDoc = "user"
)

type UserData struct {
	Username    string
	DisplayName string
	Bio         string
}

type Indexer interface {
	IndexUser(id string, data UserData) error
	DeleteUser(id string) error
	SearchUsers(query string, offset, limit int) ([]string, error)
	Close()
}

type bleveIndex struct {
	logger   logger.Logger
	indexDir string
	indexes  *xsync.MapOf[string, bleve.Index]
}

// NewBleveIndex keeps indexes in memory when no index directory is configured.
func NewBleveIndex(ctx context.Context) *bleveIndex {
	return &bleveIndex{
		logger:   xcontext.Logger(ctx),
		indexDir: xcontext.Configs(ctx).Search.IndexDir,
		indexes:  xsync.NewMapOf[bleve.Index](),
	}
}

func (i *bleveIndex) IndexUser(id string, data UserData) error {
	return i.index(UserDoc, id, data)
}

func (i *bleveIndex) DeleteUser(id string) error {
	index, err := i.getIndexByDocument(UserDoc)
	if err != nil {
		return err
	}

	return index.Delete(id)
}

// SearchUsers matches whole words of any field or a prefix of the username.
func (i *bleveIndex) SearchUsers(q string, offset, limit int) ([]string, error) {
	prefix := bleve.NewPrefixQuery(strings.ToLower(q))
	prefix.SetField("Username")

	return i.search(UserDoc, bleve.NewDisjunctionQuery(bleve.NewMatchQuery(q), prefix), offset, limit)
}

func (i *bleveIndex) index(document, id string, data any) error {
	index, err := i.getIndexByDocument(document)
	if err != nil {
		return err
	}

	record, err := index.Document(id)
	if err != nil {
		return err
	}

	// Delete if the record existed.
	if record != nil {
		if err := index.Delete(id); err != nil {
			return err
		}
	}

	return index.Index(id, data)
}

func (i *bleveIndex) search(document string, q query.Query, offset, limit int) ([]string, error) {
	index, err := i.getIndexByDocument(document)
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	searchResults, err := index.Search(req)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	for _, match := range searchResults.Hits {
		ids = append(ids, match.ID)
	}

	return ids, nil
}

func (i *bleveIndex) Close() {
	i.logger.Infof("Closing all indexers...")

	i.indexes.Range(func(document string, index bleve.Index) bool {
		if err := index.Close(); err != nil {
			i.logger.Errorf("Cannot close indexer %s: %v", document, err)
		}

		return true
	})

	i.logger.Infof("Closing all indexers...done")
}

func (i *bleveIndex) getIndexByDocument(document string) (bleve.Index, error) {
	index, ok := i.indexes.Load(document)
	if ok {
		return index, nil
	}

	i.logger.Infof("A new document index is added: %s", document)

	var err error
	if i.indexDir == "" {
		index, err = bleve.NewMemOnly(bleve.NewIndexMapping())
		if err != nil {
			return nil, err
		}
	} else {
		indexPath := path.Join(i.indexDir, document)
		index, err = bleve.New(indexPath, bleve.NewIndexMapping())
		if err != nil {
			if !errors.Is(err, bleve.ErrorIndexPathExists) {
				return nil, err
			}

			index, err = bleve.Open(indexPath)
			if err != nil {
				return nil, err
			}
		}
	}

	actual, loaded := i.indexes.LoadOrStore(document, index)
	if loaded {
		index.Close()
	}

	return actual, nil
}
