//go:build mobile

// embed.go - 移动端内置数据声明
//
// 此文件仅在使用 -tags mobile 构建时编译。
// 构建前需要把项目根目录的 data/ 复制到此目录：
//
//	cp -r data mobile/
//	go build -tags mobile ./mobile
package mobile

import "embed"

//go:embed data/game.yaml data/catalog.yaml
var dataFS embed.FS
