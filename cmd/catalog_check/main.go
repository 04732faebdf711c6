// cmd/catalog_check/main.go
// 物品目录检查工具：校验目录文件，打印合成链，并模拟生成器的掉落分布
//
// 用法：
//
//	go run ./cmd/catalog_check --catalog=data/catalog.yaml
//	go run ./cmd/catalog_check --catalog=data/catalog.yaml --draws=100000 --seed=7
//	go run ./cmd/catalog_check --catalog=data/catalog.yaml --watch
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/decker502/mergegrid/pkg/config"
	"github.com/decker502/mergegrid/pkg/systems"
)

var (
	catalogPath = flag.String("catalog", "data/catalog.yaml", "物品目录文件路径")
	draws       = flag.Int("draws", 10000, "每个生成器模拟的抽取次数")
	seed        = flag.Int64("seed", 1, "模拟使用的随机种子")
	watch       = flag.Bool("watch", false, "文件变化时重新检查")
	verbose     = flag.Bool("verbose", false, "详细日志")
)

func main() {
	flag.Parse()
	if !*verbose {
		log.SetFlags(0)
	}

	ok := check(*catalogPath)
	if !*watch {
		if !ok {
			os.Exit(1)
		}
		return
	}

	w, err := config.NewCatalogWatcher(*catalogPath)
	if err != nil {
		log.Fatalf("无法监听目录文件: %v", err)
	}
	defer w.Close()

	fmt.Printf("\n监听 %s 中，Ctrl+C 退出\n", w.Path())
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	for {
		select {
		case _, open := <-w.Events:
			if !open {
				return
			}
			fmt.Println("\n=== 文件已修改，重新检查 ===")
			check(*catalogPath)
		case err, open := <-w.Errors:
			if open {
				log.Printf("[Catalog] Warning: watcher: %v", err)
			}
		case <-interrupt:
			return
		}
	}
}

// check 加载并打印目录，返回是否通过校验
func check(path string) bool {
	catalog, err := config.LoadCatalog(path)
	if err != nil {
		fmt.Printf("✗ %v\n", err)
		return false
	}
	fmt.Printf("✓ %s: %d 个条目\n", path, catalog.Len())

	printChains(catalog)
	simulateSpawners(catalog)
	return true
}

// printChains 打印每个一阶物品的完整合成链
func printChains(catalog *config.Catalog) {
	fmt.Println("\n合成链：")
	byTier := catalog.ItemsByTier()
	for _, id := range byTier[1] {
		fmt.Printf("  %s\n", strings.Join(catalog.TierChain(id), " → "))
	}

	tiers := make([]int, 0, len(byTier))
	for tier := range byTier {
		tiers = append(tiers, tier)
	}
	sort.Ints(tiers)
	fmt.Println("\n等级分布：")
	for _, tier := range tiers {
		fmt.Printf("  T%d: %s\n", tier, strings.Join(byTier[tier], ", "))
	}
}

// simulateSpawners 用固定种子抽取，比较实际比例和配置权重
func simulateSpawners(catalog *config.Catalog) {
	if *draws <= 0 {
		return
	}
	spawner := systems.NewSpawnSystem(nil, catalog, nil, rand.New(rand.NewSource(*seed)))

	for _, id := range catalog.IDs() {
		def, err := catalog.Resolve(id)
		if err != nil || !def.IsSpawner() {
			continue
		}

		total := 0.0
		for _, entry := range def.Spawns {
			if entry.Weight > 0 {
				total += entry.Weight
			}
		}

		counts := make(map[string]int)
		for i := 0; i < *draws; i++ {
			if item, ok := spawner.SelectFromTable(def.Spawns); ok {
				counts[item]++
			}
		}

		fmt.Printf("\n%s（上限 %d 次，冷却 %.1fs）：\n", def.Name(), def.MaxSpawnsBeforeCooldown, def.CooldownSeconds)
		for _, entry := range def.Spawns {
			want := 0.0
			if total > 0 && entry.Weight > 0 {
				want = entry.Weight / total
			}
			got := float64(counts[entry.Item]) / float64(*draws)
			fmt.Printf("  %-20s 权重 %6.1f  期望 %5.1f%%  实际 %5.1f%%\n", entry.Item, entry.Weight, want*100, got*100)
		}
	}
}
