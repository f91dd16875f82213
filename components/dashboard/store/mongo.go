package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-dashcompose/components/dashboard"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoDatabase = "dashcompose"
	foldersCollection    = "folders"
	dashboardsCollection = "dashboards"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI      string
	Database string
}

// MongoStore keeps folders and dashboards as documents in two collections.
// Documents carry a sequence number so listing preserves insertion order.
type MongoStore struct {
	client     *mongo.Client
	folders    *mongo.Collection
	dashboards *mongo.Collection
	seq        atomic.Int64
}

var _ dashboard.Store = (*MongoStore)(nil)

type folderDoc struct {
	dashboard.Folder `bson:",inline"`
	Seq              int64 `bson:"seq"`
}

type dashboardDoc struct {
	dashboard.Dashboard `bson:",inline"`
	Seq                 int64 `bson:"seq"`
}

// NewMongoStore connects, pings and ensures the id indexes.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("store: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("store: mongo ping: %w", err)
	}
	db := cfg.Database
	if db == "" {
		db = defaultMongoDatabase
	}
	s := &MongoStore{
		client:     client,
		folders:    client.Database(db).Collection(foldersCollection),
		dashboards: client.Database(db).Collection(dashboardsCollection),
	}
	s.seq.Store(time.Now().UnixNano())
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := s.folders.Indexes().CreateOne(ctx, unique); err != nil {
		return fmt.Errorf("store: mongo folder index: %w", err)
	}
	if _, err := s.dashboards.Indexes().CreateOne(ctx, unique); err != nil {
		return fmt.Errorf("store: mongo dashboard index: %w", err)
	}
	if _, err := s.dashboards.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "folderId", Value: 1}}}); err != nil {
		return fmt.Errorf("store: mongo folder id index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) nextSeq() int64 { return s.seq.Add(1) }

func bySeq() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
}

func (s *MongoStore) ListFolders(ctx context.Context) ([]dashboard.Folder, error) {
	cursor, err := s.folders.Find(ctx, bson.D{}, bySeq())
	if err != nil {
		return nil, fmt.Errorf("store: mongo list folders: %w", err)
	}
	var docs []folderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: folders: %v", dashboard.ErrMalformedSnapshot, err)
	}
	out := make([]dashboard.Folder, len(docs))
	for i := range docs {
		out[i] = docs[i].Folder
	}
	return out, nil
}

func (s *MongoStore) ListDashboards(ctx context.Context) ([]dashboard.Dashboard, error) {
	cursor, err := s.dashboards.Find(ctx, bson.D{}, bySeq())
	if err != nil {
		return nil, fmt.Errorf("store: mongo list dashboards: %w", err)
	}
	var docs []dashboardDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: dashboards: %v", dashboard.ErrMalformedSnapshot, err)
	}
	out := make([]dashboard.Dashboard, len(docs))
	for i := range docs {
		out[i] = docs[i].Dashboard
	}
	return out, nil
}

func (s *MongoStore) CreateFolder(ctx context.Context, folder dashboard.Folder) error {
	if _, err := s.folders.InsertOne(ctx, folderDoc{Folder: folder, Seq: s.nextSeq()}); err != nil {
		return fmt.Errorf("store: mongo create folder %s: %w", folder.ID, err)
	}
	return nil
}

func (s *MongoStore) CreateDashboard(ctx context.Context, d dashboard.Dashboard) error {
	if _, err := s.dashboards.InsertOne(ctx, dashboardDoc{Dashboard: d, Seq: s.nextSeq()}); err != nil {
		return fmt.Errorf("store: mongo create dashboard %s: %w", d.ID, err)
	}
	return nil
}

func (s *MongoStore) UpdateFolder(ctx context.Context, id string, patch dashboard.FolderPatch) error {
	set := folderUpdate(patch)
	if len(set) == 0 {
		return s.exists(ctx, s.folders, id, dashboard.ErrFolderNotFound)
	}
	res, err := s.folders.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("store: mongo update folder %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", dashboard.ErrFolderNotFound, id)
	}
	return nil
}

func (s *MongoStore) UpdateDashboard(ctx context.Context, id string, patch dashboard.DashboardPatch) error {
	set := dashboardUpdate(patch)
	if len(set) == 0 {
		return s.exists(ctx, s.dashboards, id, dashboard.ErrDashboardNotFound)
	}
	res, err := s.dashboards.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("store: mongo update dashboard %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", dashboard.ErrDashboardNotFound, id)
	}
	return nil
}

func (s *MongoStore) exists(ctx context.Context, coll *mongo.Collection, id string, notFound error) error {
	err := coll.FindOne(ctx, bson.M{"id": id}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return err
}

// DeleteFolder removes the folder, then every dashboard filed under it.
func (s *MongoStore) DeleteFolder(ctx context.Context, id string) error {
	res, err := s.folders.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("store: mongo delete folder %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", dashboard.ErrFolderNotFound, id)
	}
	if _, err := s.dashboards.DeleteMany(ctx, bson.M{"folderId": id}); err != nil {
		return fmt.Errorf("store: mongo delete dashboards of %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) DeleteDashboard(ctx context.Context, id string) error {
	res, err := s.dashboards.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("store: mongo delete dashboard %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", dashboard.ErrDashboardNotFound, id)
	}
	return nil
}

func folderUpdate(patch dashboard.FolderPatch) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Color != nil {
		set["color"] = *patch.Color
	}
	return set
}

func dashboardUpdate(patch dashboard.DashboardPatch) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.FolderID != nil {
		set["folderId"] = *patch.FolderID
	}
	if patch.WidgetInstances != nil {
		set["widgetInstances"] = patch.WidgetInstances
	}
	if patch.Theme != nil {
		set["theme"] = *patch.Theme
	}
	if patch.IframeURL != nil {
		set["iframeUrl"] = *patch.IframeURL
	}
	return set
}
