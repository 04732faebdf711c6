// cmd/save_dump/main.go
// 存档查看工具：读取存档并按格子打印内容
//
// 用法：
//
//	go run ./cmd/save_dump --file=mergegrid.save
//	go run ./cmd/save_dump --app=mergegrid
//	go run ./cmd/save_dump --file=mergegrid.save --raw
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/decker502/mergegrid/pkg/config"
	"github.com/decker502/mergegrid/pkg/game"
	"github.com/quasilyte/gdata/v2"
)

var (
	filePath    = flag.String("file", "", "文件存档路径（zstd 压缩）")
	appName     = flag.String("app", "mergegrid", "gdata 应用名（未指定 --file 时使用）")
	catalogPath = flag.String("catalog", "data/catalog.yaml", "物品目录，用于显示名称；为空时不解析")
	raw         = flag.Bool("raw", false, "直接输出解压后的 YAML")
)

func main() {
	flag.Parse()

	store, err := openStore()
	if err != nil {
		log.Fatalf("无法打开存档: %v", err)
	}

	data, err := store.Read()
	if errors.Is(err, game.ErrNoSave) {
		fmt.Println("没有存档")
		return
	}
	if err != nil {
		log.Fatalf("读取存档失败: %v", err)
	}

	if *raw {
		os.Stdout.Write(data)
		return
	}

	save, err := game.DecodeSaveData(data)
	if err != nil {
		log.Fatalf("解析存档失败: %v", err)
	}

	var catalog *config.Catalog
	if *catalogPath != "" {
		catalog, err = config.LoadCatalog(*catalogPath)
		if err != nil {
			log.Printf("Warning: 物品目录不可用，只显示类型ID: %v", err)
		}
	}

	printSave(save, catalog)
}

func openStore() (game.SaveStore, error) {
	if *filePath != "" {
		return game.NewFileStore(*filePath), nil
	}
	manager, err := gdata.Open(gdata.Config{AppName: *appName})
	if err != nil {
		return nil, err
	}
	return game.NewGdataStore(manager), nil
}

func printSave(save *game.GameSaveData, catalog *config.Catalog) {
	fmt.Printf("版本: %d\n", save.Version)
	if !save.SavedAt.IsZero() {
		fmt.Printf("保存时间: %s\n", save.SavedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("面板打开: %v\n", save.WasGridPanelOpen)
	fmt.Printf("实体数量: %d\n\n", len(save.GridEntities))

	records := append([]game.SavedGridEntity(nil), save.GridEntities...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SlotIndex < records[j].SlotIndex
	})

	for _, r := range records {
		name := r.ItemTypeID
		if catalog != nil {
			if def, err := catalog.Resolve(r.ItemTypeID); err == nil {
				name = fmt.Sprintf("%s (%s)", def.Name(), r.ItemTypeID)
			} else {
				name += " [未知类型]"
			}
		}

		line := fmt.Sprintf("  [%2d] %s", r.SlotIndex, name)
		if r.Locked {
			line += " 🔒"
		}
		if r.IsSpawnerType {
			line += fmt.Sprintf("  已生成 %d，冷却剩余 %.1fs", r.SpawnerItemsSpawned, r.SpawnerCooldownRemaining)
		}
		fmt.Println(line)
	}
}
