package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/goydb/goyview/pkg/model"
	"github.com/goydb/goyview/pkg/port"
	uuid "github.com/satori/go.uuid"
	"gopkg.in/mgo.v2/bson"
)

// PutDocument stores the document and returns the new revision. An
// existing document can only be updated with its current revision.
// Documents without id get a random uuid.
func (d *Database) PutDocument(ctx context.Context, doc *model.Document) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewV4().String()
	}
	delete(doc.Data, "_id")

	var rev string
	err := d.write(ctx, doc, func(tx port.EngineWriteTransaction) error {
		oldDoc, err := getDocument(tx, doc.ID)
		if err != nil && !errors.Is(err, port.ErrNotFound) {
			return err
		}
		if oldDoc != nil && !oldDoc.Deleted && !oldDoc.ValidUpdateRevision(doc) {
			return fmt.Errorf("document %q: %w", doc.ID, port.ErrConflict)
		}

		revSeq := doc.NextSequence()
		if oldDoc != nil && oldDoc.Deleted {
			// continue after the tombstone
			revSeq = oldDoc.NextSequence()
		}
		delete(doc.Data, "_rev")
		doc.Deleted = false

		rev, err = revision(revSeq, doc)
		if err != nil {
			return err
		}
		doc.Rev = rev

		return d.putRaw(ctx, tx, doc)
	})
	if err != nil {
		return "", err
	}
	return rev, nil
}

func (d *Database) GetDocument(ctx context.Context, docID string) (*model.Document, error) {
	var doc *model.Document
	err := d.db.ReadTransaction(func(tx port.EngineReadTransaction) error {
		var err error
		doc, err = getDocument(tx, docID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if doc.Deleted {
		return nil, fmt.Errorf("document %q deleted: %w", docID, port.ErrNotFound)
	}

	return doc, nil
}

// DeleteDocument replaces the document with a tombstone, the
// tombstone is reported by the changes feed.
func (d *Database) DeleteDocument(ctx context.Context, docID, rev string) (*model.Document, error) {
	doc := &model.Document{ID: docID, Deleted: true}
	err := d.write(ctx, doc, func(tx port.EngineWriteTransaction) error {
		oldDoc, err := getDocument(tx, docID)
		if err != nil {
			return err
		}
		if oldDoc.Deleted {
			return fmt.Errorf("document %q: %w", docID, port.ErrNotFound)
		}
		if oldDoc.Rev != rev {
			return fmt.Errorf("document %q: %w", docID, port.ErrConflict)
		}

		doc.Rev, err = revision(oldDoc.NextSequence(), doc)
		if err != nil {
			return err
		}
		return d.putRaw(ctx, tx, doc)
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// write executes fn in a write transaction and notifies the
// listeners about the document after the commit
func (d *Database) write(ctx context.Context, doc *model.Document, fn func(tx port.EngineWriteTransaction) error) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	err := d.db.WriteTransaction(fn)
	if err != nil {
		return err
	}

	d.NotifyDocumentUpdate(doc)
	return nil
}

func (d *Database) putRaw(ctx context.Context, tx port.EngineWriteTransaction, doc *model.Document) error {
	// sets doc.LocalSeq
	err := d.changes.DocumentStored(ctx, tx, doc)
	if err != nil {
		return err
	}

	data, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return tx.Put(docsBucket, []byte(doc.ID), data)
}

func getDocument(tx port.EngineReadTransaction, docID string) (*model.Document, error) {
	data, err := tx.Get(docsBucket, []byte(docID))
	if err != nil {
		return nil, fmt.Errorf("document %q: %w", docID, err)
	}

	doc := new(model.Document)
	err = bson.Unmarshal(data, doc)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// revision returns "<seq>-<md5 of the document>"
func revision(seq int, doc *model.Document) (string, error) {
	hash := md5.New()
	err := cbor.NewEncoder(hash).Encode(doc)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(seq) + "-" + hex.EncodeToString(hash.Sum(nil)), nil
}
