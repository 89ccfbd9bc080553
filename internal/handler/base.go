package handler

import (
	"github.com/goydb/goyview/internal/adapter/storage"
	"github.com/goydb/goyview/internal/controller"
)

type Base struct {
	Storage *storage.Storage
	Views   *controller.Registry
}
