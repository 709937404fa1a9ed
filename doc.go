// Package pacx reads and writes PACx version 403 archives.
//
// A PACx archive bundles named binary resources into one root sub-archive
// plus optional split sub-archives that stay under a size threshold. Names
// are stored in prefix-sharing trees grouped by resource category, and each
// sub-archive may be compressed with Deflate or with LZ4 in 64 KiB blocks.
//
// # Quick Start
//
// Write an archive:
//
//	arc := &pacx.Archive{
//	    Resources: []pacx.Resource{
//	        {Name: "chr_player.model", Data: model},
//	        {Name: "chr_player.material", Data: material},
//	    },
//	}
//	res, err := arc.Save("chr_player.pac",
//	    pacx.SaveWithCompression(pacx.CompressionLz4),
//	)
//
// Read it back:
//
//	arc, err := pacx.Load("chr_player.pac")
//	if err != nil {
//	    return err
//	}
//	for _, r := range arc.Resources {
//	    fmt.Println(r.Name, len(r.Data))
//	}
//
// # Splits
//
// Resources whose category is not root-exclusive are moved into split
// sub-archives once they are present. The root still lists them, without
// their bytes. Use [SaveWithSplitThreshold] to tune the split size; zero
// keeps everything in the root.
//
// Resources whose extension has no known category are skipped with a
// warning and reported in [SaveResult].
package pacx
