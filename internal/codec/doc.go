// Package codec defines the narrow capability interfaces the thumbnail core
// uses to reach the media-codec subsystem.
//
// The core never demultiplexes, decodes, converts pixels or encodes images
// itself. It drives a [Backend] through the following steps:
//
//   - [Backend.OpenInput] opens a container and returns an [Input]
//   - [Input.BestVideoStream] and [Input.OpenDecoder] bind a [Decoder]
//   - [Input.Seek] and [Input.ReadPacket] feed packets to the decoder
//   - [Backend.NewConverter] builds a pixel-format [Converter]
//   - [Backend.NewEncoder] builds a still-image [Encoder]
//
// Ownership of [Packet] and [Frame] values moves with the value: whoever
// holds one last must call Release exactly once.
//
// The production backend is [video-thumbnailer/internal/ffmpeg]. A
// deterministic pure-Go backend for tests lives in
// [video-thumbnailer/internal/codec/codectest].
package codec
