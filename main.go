package main

import (
	"embed"
	"log"
	goruntime "runtime"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/collidergen/pkg/prefs"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	store, err := prefs.Open(prefs.DefaultPath)
	if err != nil {
		log.Fatalf("Open preferences: %v", err)
	}
	app := NewApp(store)

	err = wails.Run(&options.App{
		Title:     "collidergen",
		Width:     1200,
		Height:    800,
		Menu:      app.menu(),
		OnStartup: app.startup,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Bind: []interface{}{app},
	})
	if err != nil {
		log.Fatalf("Wails: %v", err)
	}
}

// menu builds the application menu. The Tools checkbox mirrors the
// persisted Better Collider Generation switch.
func (a *App) menu() *menu.Menu {
	appMenu := menu.NewMenu()
	if goruntime.GOOS == "darwin" {
		appMenu.Append(menu.AppMenu())
	}

	file := appMenu.AddSubmenu("File")
	file.AddText("Import Model...", keys.CmdOrCtrl("o"), func(*menu.CallbackData) {
		if _, err := a.OpenAndImport(); err != nil {
			log.Printf("Import: %v", err)
		}
	})

	tools := appMenu.AddSubmenu("Tools")
	toggle := tools.AddCheckbox("Better Collider Generation", a.prefs.Enabled(), nil, func(*menu.CallbackData) {
		if _, err := a.ToggleColliderGeneration(); err != nil {
			runtime.MessageDialog(a.ctx, runtime.MessageDialogOptions{
				Type:    runtime.ErrorDialog,
				Title:   "Preferences",
				Message: err.Error(),
			})
		}
	})
	a.onToggle = func(on bool) {
		toggle.Checked = on
		if a.ctx != nil {
			runtime.MenuUpdateApplicationMenu(a.ctx)
			runtime.EventsEmit(a.ctx, "collider-generation", on)
		}
	}

	return appMenu
}
